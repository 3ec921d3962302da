package navigator

import "fmt"

// LoggerEnabled turns on the fallback logger used when no Logger is given.
var LoggerEnabled = false

// Logger is the printf style logger used by the navigator, the spa host and
// the build pipeline.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type defaultLogger struct{}

func (d *defaultLogger) Debug(format string, args ...any) { d.print("DEBUG", format, args) }

func (d *defaultLogger) Info(format string, args ...any) { d.print("INFO", format, args) }

func (d *defaultLogger) Warn(format string, args ...any) { d.print("WARN", format, args) }

func (d *defaultLogger) Error(format string, args ...any) { d.print("ERROR", format, args) }

func (d *defaultLogger) print(level, format string, args []any) {
	if !LoggerEnabled {
		return
	}
	fmt.Printf("["+level+"] "+format+"\n", args...)
}

// DefaultLogger returns lgrs[0] when present, otherwise the package logger
// that only prints when LoggerEnabled is set.
func DefaultLogger(lgrs ...Logger) Logger {
	if len(lgrs) > 0 && lgrs[0] != nil {
		return lgrs[0]
	}
	return &defaultLogger{}
}
