// Package logging adapts zap to the navigator Logger interface.
package logging

import (
	"go.uber.org/zap"

	navigator "github.com/goliatone/go-navigator"
)

type Logger struct {
	sugar *zap.SugaredLogger
}

var _ navigator.Logger = (*Logger)(nil)

// New builds a production logger, or a development logger at debug level.
func New(debug bool) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.DisableStacktrace = !debug

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return Wrap(l), nil
}

func Wrap(l *zap.Logger) *Logger {
	return &Logger{sugar: l.Sugar()}
}

// Named returns a child logger scoped to name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{sugar: l.sugar.Named(name)}
}

func (l *Logger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
