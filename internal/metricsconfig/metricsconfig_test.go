package metricsconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `{
	"cluster": "testcluster",
	"flushInterval": "10s",
	"queueCapacity": 128,
	"sampleRate": 0.5,
	"outputs": [
		{"kind": "stdout"},
		{"kind": "graphite", "address": "localhost:2003", "prefix": "app"}
	]
}`

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	err := Validate(json.RawMessage(validConfig))
	assert.NoError(t, err)
}

func TestValidateRejectsMissingCluster(t *testing.T) {
	err := Validate(json.RawMessage(`{"outputs": [{"kind": "stdout"}]}`))
	assert.Error(t, err)
}

func TestValidateRejectsUnknownOutputKind(t *testing.T) {
	err := Validate(json.RawMessage(`{"cluster": "c", "outputs": [{"kind": "carrier-pigeon"}]}`))
	assert.Error(t, err)
}

func TestValidateRejectsSampleRateOutOfRange(t *testing.T) {
	err := Validate(json.RawMessage(`{"cluster": "c", "outputs": [], "sampleRate": 1.5}`))
	assert.Error(t, err)
}

func TestLoadReadsAndDecodesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "testcluster", cfg.Cluster)
	assert.Equal(t, 128, cfg.QueueCapacity)
	assert.Equal(t, 0.5, cfg.SampleRate)
	assert.Len(t, cfg.Outputs, 2)
	assert.Equal(t, "graphite", cfg.Outputs[1].Kind)
	assert.Equal(t, "localhost:2003", cfg.Outputs[1].Address)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"outputs": []}`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
