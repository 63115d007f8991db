package logger

import (
	"log/slog"
	"os"
)

// Logger is a thin wrapper over slog that keeps every entry tagged with the
// service name and the current action. Chaining returns a copy, so a derived
// logger never mutates its parent.
type Logger struct {
	s *slog.Logger
}

func New(service string) Logger {
	hostname, _ := os.Hostname()
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	return Logger{
		s: slog.New(h).With("service", service, "hostname", hostname),
	}
}

// Action tags all entries of the returned logger with the given action name.
func (l Logger) Action(action string) Logger {
	return Logger{s: l.s.With("action", action)}
}

func (l Logger) With(args ...any) Logger {
	return Logger{s: l.s.With(args...)}
}

func (l Logger) Info(msg string, args ...any) {
	l.s.Info(msg, args...)
}

func (l Logger) Debug(msg string, args ...any) {
	l.s.Debug(msg, args...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.s.Warn(msg, args...)
}

func (l Logger) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append([]any{"error", err.Error()}, args...)
	}
	l.s.Error(msg, args...)
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() Logger {
	return Logger{s: slog.New(slog.DiscardHandler)}
}
