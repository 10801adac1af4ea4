// Package logging defines the diagnostic message sink shared by all analyzers.
// Analyzers never write to stdout/stderr directly; every parse failure,
// branch-limit warning, and per-item computation failure goes through a Logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// #region logger-interface

// Logger is the sink collaborator analyzers log through.
// keyvals are alternating key/value pairs, zap-sugared style.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// #endregion logger-interface

// #region zap-adapter

// zapLogger adapts a zap SugaredLogger to the Logger interface.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZap builds a zap-backed Logger. The returned func flushes buffered
// entries and should be deferred by the caller.
func NewZap(debug bool) (Logger, func(), error) {
	var (
		z   *zap.Logger
		err error
	)
	if debug {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("build zap logger: %w", err)
	}
	sync := func() { _ = z.Sync() }
	return &zapLogger{s: z.Sugar()}, sync, nil
}

func (l *zapLogger) Debug(msg string, keyvals ...any) { l.s.Debugw(msg, keyvals...) }
func (l *zapLogger) Info(msg string, keyvals ...any)  { l.s.Infow(msg, keyvals...) }
func (l *zapLogger) Warn(msg string, keyvals ...any)  { l.s.Warnw(msg, keyvals...) }
func (l *zapLogger) Error(msg string, keyvals ...any) { l.s.Errorw(msg, keyvals...) }

// #endregion zap-adapter

// #region nop

// nopLogger discards everything.
type nopLogger struct{}

// Nop returns a Logger that discards all messages.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// #endregion nop
