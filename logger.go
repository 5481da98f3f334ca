package accounts

import (
	"fmt"
	"log/slog"
)

// Logger is the minimal logging surface the core depends on. Implementations
// may treat args as key/value pairs (slog style) or printf arguments.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type defLogger struct{}

func (defLogger) Debug(msg string, args ...any) { printLog("DBG", msg, args...) }
func (defLogger) Info(msg string, args ...any)  { printLog("INF", msg, args...) }
func (defLogger) Warn(msg string, args ...any)  { printLog("WRN", msg, args...) }
func (defLogger) Error(msg string, args ...any) { printLog("ERR", msg, args...) }

func printLog(level, msg string, args ...any) {
	if len(args) > 0 {
		msg = fmt.Sprintf("%s %v", msg, args)
	}
	fmt.Printf("[%s] ACCOUNTS %s\n", level, msg)
}

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger adapts a *slog.Logger to the core's Logger interface.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogLogger{l: l}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger drops all output. Useful for tests.
func NoopLogger() Logger { return noopLogger{} }

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
