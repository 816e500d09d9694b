package wiz

import (
	"fmt"
	"io"
)

// Logger is a leveled wrapper around an io.Writer, in the style of the
// teacher's log.Logger but split into levels so discovery and resolution
// can emit warnings without the caller parsing prefixes out of a single
// stream.
type Logger struct {
	out   io.Writer
	debug bool
}

// NewLogger returns a Logger writing to w. Debug-level lines are only
// written when debug is true.
func NewLogger(w io.Writer, debug bool) *Logger {
	return &Logger{out: w, debug: debug}
}

// Warnf logs a formatted warning line, prefixed with "warn: ".
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l == nil || l.out == nil {
		return
	}
	fmt.Fprintf(l.out, "warn: "+format+"\n", args...)
}

// Debugf logs a formatted debug line, prefixed with "debug: ", when the
// logger was constructed with debug enabled.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l == nil || l.out == nil || !l.debug {
		return
	}
	fmt.Fprintf(l.out, "debug: "+format+"\n", args...)
}

// Logln logs a plain line, matching the teacher's unleveled Logln.
func (l *Logger) Logln(args ...interface{}) {
	if l == nil || l.out == nil {
		return
	}
	fmt.Fprintln(l.out, args...)
}
