package log

import (
	"context"
	"io"
	"log"
	"os"
)

type CslLogger struct {
	out   *log.Logger
	debug bool
}

func NewCslLogger() (*CslLogger, error) {
	return NewCslLoggerWithWriter(os.Stderr, true)
}

// NewCslLoggerWithWriter writes to w; Debug lines are dropped unless debug is set.
func NewCslLoggerWithWriter(w io.Writer, debug bool) (*CslLogger, error) {
	return &CslLogger{
		out:   log.New(w, "", log.LstdFlags),
		debug: debug,
	}, nil
}

func (l *CslLogger) print(level, format string, args ...interface{}) {
	l.out.Printf("["+level+"] "+format, args...)
}

func (l *CslLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.print("INFO", format, args...)
}

func (l *CslLogger) Alert(ctx context.Context, format string, args ...interface{}) {
	l.print("ALERT", format, args...)
}

func (l *CslLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.print("ERROR", format, args...)
}

func (l *CslLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.print("WARN", format, args...)
}

func (l *CslLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.print("DEBUG", format, args...)
}

func (l *CslLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	l.print("CRITICAL", format, args...)
}

func (l *CslLogger) Emergency(ctx context.Context, format string, args ...interface{}) {
	l.print("EMERGENCY", format, args...)
}

func (l *CslLogger) Notice(ctx context.Context, format string, args ...interface{}) {
	l.print("NOTICE", format, args...)
}
