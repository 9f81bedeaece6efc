// Package log provides the leveled logger used throughout evseat.
//
// It mirrors the debug/info/error/fatal level gate the touchpad driver we
// grew out of used (a package-level level plus a log.Logger), but backs it
// with a structured *zap.SugaredLogger* so dispatchers can attach fields
// (device sysname, slot index, state name) instead of formatting them into
// a message string.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger handle passed to a Context and threaded
// down into every dispatcher. The zero value is not usable; use New or
// Nop.
type Logger struct {
	s *zap.SugaredLogger
}

// New builds a Logger writing to stderr at the given level.
func New(level zapcore.Level) Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "t"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), level)
	return Logger{s: zap.New(core).Sugar()}
}

// Nop returns a Logger that discards everything. Used as the default for
// Contexts that don't care about logging (most unit tests).
func Nop() Logger {
	return Logger{s: zap.NewNop().Sugar()}
}

// With returns a Logger with the given structured fields attached to every
// subsequent call.
func (l Logger) With(keyValues ...interface{}) Logger {
	if l.s == nil {
		return Nop().With(keyValues...)
	}
	return Logger{s: l.s.With(keyValues...)}
}

func (l Logger) Debugw(msg string, keyValues ...interface{}) {
	l.orNop().Debugw(msg, keyValues...)
}

func (l Logger) Infow(msg string, keyValues ...interface{}) {
	l.orNop().Infow(msg, keyValues...)
}

func (l Logger) Warnw(msg string, keyValues ...interface{}) {
	l.orNop().Warnw(msg, keyValues...)
}

func (l Logger) Errorw(msg string, keyValues ...interface{}) {
	l.orNop().Errorw(msg, keyValues...)
}

func (l Logger) orNop() *zap.SugaredLogger {
	if l.s == nil {
		return Nop().s
	}
	return l.s
}

// Sync flushes any buffered log entries. Safe to call on a Nop logger.
func (l Logger) Sync() error {
	if l.s == nil {
		return nil
	}
	return l.s.Sync()
}
