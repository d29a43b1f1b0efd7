package logging

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ConsoleLogger writes human-oriented log lines to a terminal stream:
//
//	2025-01-02 15:04:05 - INFO - Linux to Remote: Claude config
type ConsoleLogger struct {
	out    *consoleSink
	level  Level
	fields Fields
}

type consoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleLogger creates a console logger writing entries at or above level
func NewConsoleLogger(w io.Writer, level Level) *ConsoleLogger {
	return &ConsoleLogger{out: &consoleSink{w: w}, level: level}
}

// Debug logs a debug message
func (l *ConsoleLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *ConsoleLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *ConsoleLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *ConsoleLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger with additional fields sharing the same stream
func (l *ConsoleLogger) WithFields(fields Fields) Logger {
	return &ConsoleLogger{out: l.out, level: l.level, fields: mergeFields(l.fields, fields)}
}

// Close does nothing; the stream belongs to the caller
func (l *ConsoleLogger) Close() error {
	return nil
}

func (l *ConsoleLogger) log(level Level, msg string, err error, fields Fields) {
	if level < l.level {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s - %s", time.Now().Format("2006-01-02 15:04:05"), levelString(level), msg)
	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}
	// Fields only at debug level, the console stays readable otherwise
	if l.level == DebugLevel {
		b.WriteString(formatFields(mergeFields(l.fields, fields)))
	}
	b.WriteByte('\n')

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	io.WriteString(l.out.w, b.String())
}
