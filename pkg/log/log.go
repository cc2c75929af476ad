// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package log is the leveled logger pkg/metrics/output/logout renders
// metric lines through. It keeps cc-backend's pkg/log shape (a package-var
// io.Writer plus a prefixed *log.Logger per severity, gated by swapping the
// writer to io.Discard) but trims the severities and helpers down to what a
// metrics sink actually selects between: debug, info and notice.
// Warn/Error/Critical, their Panic/Fatal/SetLogLevel machinery, and the
// time-stamped logger variants belong to a full application logger and
// have no caller here.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	NoteWriter  io.Writer = os.Stderr
)

var (
	DebugPrefix string = "<7>[DEBUG]    "
	InfoPrefix  string = "<6>[INFO]     "
	NotePrefix  string = "<5>[NOTICE]   "
)

var (
	DebugLog *log.Logger = log.New(DebugWriter, DebugPrefix, 0)
	InfoLog  *log.Logger = log.New(InfoWriter, InfoPrefix, 0)
	NoteLog  *log.Logger = log.New(NoteWriter, NotePrefix, log.Lshortfile)
)

func printfStr(format string, v ...interface{}) string {
	return fmt.Sprintf(format, v...)
}

func Debugf(format string, v ...interface{}) {
	if DebugWriter != io.Discard {
		DebugLog.Output(2, printfStr(format, v...))
	}
}

func Infof(format string, v ...interface{}) {
	if InfoWriter != io.Discard {
		InfoLog.Output(2, printfStr(format, v...))
	}
}

func Notef(format string, v ...interface{}) {
	if NoteWriter != io.Discard {
		NoteLog.Output(2, printfStr(format, v...))
	}
}
