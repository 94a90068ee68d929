// Package logx defines the logging seam the core takes as an injected
// collaborator, in place of the variadic debug macros a C implementation
// of this core would use.
package logx

import (
	"log"
	"os"
)

// Logger is the minimal sink every component that can emit a diagnostic
// accepts at construction. The core never decides how or where a message
// ends up; it only classifies it by level.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// stdLogger wraps the standard library logger with a level prefix.
type stdLogger struct {
	l *log.Logger
}

// New returns a Logger backed by the standard library, writing to stderr
// with the given prefix.
func New(prefix string) Logger {
	return &stdLogger{l: log.New(os.Stderr, prefix, log.LstdFlags)}
}

func (s *stdLogger) Debugf(format string, args ...interface{}) {
	s.l.Printf("DEBUG "+format, args...)
}

func (s *stdLogger) Warnf(format string, args ...interface{}) {
	s.l.Printf("WARN "+format, args...)
}

func (s *stdLogger) Errorf(format string, args ...interface{}) {
	s.l.Printf("ERROR "+format, args...)
}

type discard struct{}

func (discard) Debugf(string, ...interface{}) {}
func (discard) Warnf(string, ...interface{})  {}
func (discard) Errorf(string, ...interface{}) {}

// Discard returns a Logger that drops every message. Used by tests and by
// callers that don't want diagnostics.
func Discard() Logger { return discard{} }
