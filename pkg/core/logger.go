package core

import (
	"log"
	"os"
)

// Logger is the teacher's own minimal logging seam (pkg/core/interfaces.go
// in the source repo): a single Printf method, so the render driver and
// CLI can share one sink without pulling in a structured logging library
// that nothing else in the example corpus uses.
type Logger interface {
	Printf(format string, args ...interface{})
}

// StdLogger adapts the standard library's log.Logger to Logger.
type StdLogger struct{ *log.Logger }

func NewStdLogger() StdLogger {
	return StdLogger{log.New(os.Stderr, "", log.LstdFlags)}
}

// NopLogger discards everything, used by tests that don't want log noise.
type NopLogger struct{}

func (NopLogger) Printf(format string, args ...interface{}) {}
