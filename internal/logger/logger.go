// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a thin wrapper around the slog.Logger
type Logger struct {
	*slog.Logger
}

// New returns a new Logger that writes to stderr with the given level
func New(level slog.Level) *Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger returns a new Logger with the given level that writes to the given outputs. If
// no output is given, stderr is used.
func NewLogger(level slog.Level, outputs ...io.Writer) *Logger {
	var output io.Writer = os.Stderr
	switch len(outputs) {
	case 0:
	case 1:
		output = outputs[0]
	default:
		output = io.MultiWriter(outputs...)
	}
	return &Logger{slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))}
}

// With returns a Logger that includes the given attributes in each output operation
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

// WithRequestID returns a Logger that tags each record with the given request ID
func (l *Logger) WithRequestID(id string) *Logger {
	if id == "" {
		return l
	}
	return l.With(slog.String("request_id", id))
}

// Err returns a slog.Attr for the given error
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}
