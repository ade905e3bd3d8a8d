// Package diag writes the human-readable diagnostic stream: one line per event.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSilent:
		return "SILENT"
	default:
		return "UNKNOWN"
	}
}

// Logger is the diagnostic sink shared by every stage of a run
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithFields(fields ...Field) Logger
	SetLevel(level Level)
	// Warnings returns how many warn or error events were emitted
	Warnings() int
}

// Field is a key/value pair appended to a log line
type Field struct {
	Key   string
	Value any
}

// F is a convenience function for creating fields
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// sink is shared between a logger and the children created by WithFields
type sink struct {
	mu       sync.Mutex
	out      io.Writer
	level    Level
	warnings int
}

type streamLogger struct {
	sink   *sink
	fields []Field
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgCyan),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

// New creates a logger writing to out at the given level
func New(level Level, out io.Writer) Logger {
	if out == nil {
		out = os.Stderr
	}
	return &streamLogger{sink: &sink{out: out, level: level}}
}

// NewDefault creates an Info logger writing to stderr
func NewDefault() Logger {
	return New(LevelInfo, os.Stderr)
}

// Discard returns a logger that drops everything but still counts warnings
func Discard() Logger {
	return New(LevelSilent, io.Discard)
}

func (l *streamLogger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

func (l *streamLogger) WithFields(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &streamLogger{sink: l.sink, fields: merged}
}

func (l *streamLogger) Warnings() int {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.warnings
}

func (l *streamLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *streamLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *streamLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *streamLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *streamLogger) log(level Level, msg string, fields []Field) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level >= LevelWarn {
		l.sink.warnings++
	}
	if level < l.sink.level {
		return
	}

	var sb strings.Builder
	sb.WriteString(levelColors[level].Sprintf("%-5s", level.String()))
	sb.WriteString(" ")
	sb.WriteString(msg)

	if len(l.fields)+len(fields) > 0 {
		sb.WriteString(" |")
		for _, field := range l.fields {
			fmt.Fprintf(&sb, " %s=%v", field.Key, field.Value)
		}
		for _, field := range fields {
			fmt.Fprintf(&sb, " %s=%v", field.Key, field.Value)
		}
	}
	sb.WriteString("\n")

	_, _ = io.WriteString(l.sink.out, sb.String())
}
