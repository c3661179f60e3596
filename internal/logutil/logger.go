// Package logutil provides the shared diagnostic logger for the trajectory
// tools. All pipeline and server components log through Logf so a single
// SetLogger call can redirect or mute the whole program.
package logutil

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// DebugLogger adapts Logf for components that accept a Debugf-style logger.
// The prefix is prepended to every format string.
type DebugLogger struct {
	Prefix string
}

// Debugf logs through the package logger with the configured prefix.
func (d DebugLogger) Debugf(format string, args ...interface{}) {
	Logf(d.Prefix+format, args...)
}
