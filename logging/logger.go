// Package logging provides the leveled, structured logger used across the
// goscf packages. A Logger fans formatted entries out to one or more Output
// sinks and stamps every entry with its configured default fields, so a
// calculation's run identifier travels with each line.
package logging

import (
	"fmt"
	"sort"
	"time"
)

// Output is a logging destination.
type Output interface {
	Write(Entry) error
	Sync() error
	Close() error
}

// Entry is one formatted log record.
type Entry struct {
	Time     time.Time
	Severity Severity
	Message  string
	Fields   map[string]interface{}
}

// Config configures a Logger.
type Config struct {
	Severity      Severity
	Outputs       []Output
	DefaultFields map[string]interface{}
}

// Logger writes leveled entries to its outputs. Safe for concurrent use as
// long as each Output is.
type Logger struct {
	severity Severity
	outputs  []Output
	fields   map[string]interface{}
}

// NewLogger creates a logger from cfg. A logger with no outputs discards
// everything.
func NewLogger(cfg Config) *Logger {
	return &Logger{
		severity: cfg.Severity,
		outputs:  cfg.Outputs,
		fields:   cfg.DefaultFields,
	}
}

// Discard returns a logger that drops all entries. Useful as a default for
// library constructors that accept an optional logger.
func Discard() *Logger {
	return &Logger{severity: ERROR + 1}
}

// WithFields returns a child logger whose entries carry the merged fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{severity: l.severity, outputs: l.outputs, fields: merged}
}

func (l *Logger) logf(s Severity, format string, args ...interface{}) {
	if s < l.severity || len(l.outputs) == 0 {
		return
	}

	entry := Entry{
		Time:     time.Now(),
		Severity: s,
		Message:  fmt.Sprintf(format, args...),
		Fields:   l.fields,
	}
	for _, out := range l.outputs {
		// A broken sink must not take the calculation down with it.
		_ = out.Write(entry)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.logf(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.logf(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.logf(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.logf(ERROR, format, args...) }

// Sync flushes all outputs.
func (l *Logger) Sync() error {
	var first error
	for _, out := range l.outputs {
		if err := out.Sync(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Format renders an entry as a single line. Fields are emitted in sorted
// key order so output is stable.
func (e Entry) Format() string {
	line := fmt.Sprintf("%s %-5s %s", e.Time.Format("2006-01-02 15:04:05"), e.Severity, e.Message)
	if len(e.Fields) == 0 {
		return line
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line += fmt.Sprintf(" %s=%v", k, e.Fields[k])
	}
	return line
}
