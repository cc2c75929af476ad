package stdout

import (
	"bytes"
	"testing"
)

func TestWriteForwardsBytes(t *testing.T) {
	var buf bytes.Buffer
	w := Wrap(&buf)

	n, err := w.Write([]byte("app.requests 42\n"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len("app.requests 42\n") {
		t.Errorf("n = %d, want %d", n, len("app.requests 42\n"))
	}
	if buf.String() != "app.requests 42\n" {
		t.Errorf("buf = %q", buf.String())
	}
}

func TestFlushIsNoop(t *testing.T) {
	w := Wrap(&bytes.Buffer{})
	if err := w.Flush(); err != nil {
		t.Errorf("Flush: %v", err)
	}
}
