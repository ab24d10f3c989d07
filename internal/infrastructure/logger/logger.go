package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

// SlogLogger adapts a slog.Logger to the printf-style IAppLogger port.
type SlogLogger struct {
	log *slog.Logger
}

var _ usecasecontract.IAppLogger = (*SlogLogger)(nil)

// New creates a text logger writing to w at the named level (debug, info,
// warn or error). Unknown levels fall back to info.
func New(level string, w io.Writer) *SlogLogger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &SlogLogger{log: slog.New(handler)}
}

// NewStdLogger creates an info level logger on stderr.
func NewStdLogger() usecasecontract.IAppLogger {
	return New("info", os.Stderr)
}

// Slog returns the underlying structured logger.
func (l *SlogLogger) Slog() *slog.Logger {
	return l.log
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *SlogLogger) Debugf(format string, args ...interface{}) {
	l.logf(slog.LevelDebug, format, args...)
}

func (l *SlogLogger) Infof(format string, args ...interface{}) {
	l.logf(slog.LevelInfo, format, args...)
}

func (l *SlogLogger) Warnf(format string, args ...interface{}) {
	l.logf(slog.LevelWarn, format, args...)
}

func (l *SlogLogger) Errorf(format string, args ...interface{}) {
	l.logf(slog.LevelError, format, args...)
}

// Fatalf logs at error level and exits the process.
func (l *SlogLogger) Fatalf(format string, args ...interface{}) {
	l.logf(slog.LevelError, format, args...)
	os.Exit(1)
}

func (l *SlogLogger) logf(level slog.Level, format string, args ...interface{}) {
	ctx := context.Background()
	if !l.log.Enabled(ctx, level) {
		return
	}
	l.log.Log(ctx, level, fmt.Sprintf(format, args...))
}
