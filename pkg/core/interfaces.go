package core

import (
	"fmt"
	"io"
)

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// WriterLogger implements Logger by writing unprefixed output to w
type WriterLogger struct {
	w io.Writer
}

// NewWriterLogger creates a logger that writes to w
func NewWriterLogger(w io.Writer) Logger {
	return &WriterLogger{w: w}
}

func (wl *WriterLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(wl.w, format, args...)
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Printf(format string, args ...interface{}) {}
