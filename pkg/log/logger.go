package log

import "context"

type Logger interface {
	Info(ctx context.Context, format string, args ...interface{})
	Alert(ctx context.Context, format string, args ...interface{})
	Error(ctx context.Context, format string, args ...interface{})
	Warn(ctx context.Context, format string, args ...interface{})
	Debug(ctx context.Context, format string, args ...interface{})
	Notice(ctx context.Context, format string, args ...interface{})
	Critical(ctx context.Context, format string, args ...interface{})
	Emergency(ctx context.Context, format string, args ...interface{})
}

// NewLogger returns a file-backed zap logger when filename is set, otherwise a
// console logger. The returned close func flushes and releases the file.
func NewLogger(filename string, debug bool) (Logger, func() error, error) {
	if filename == "" {
		l, err := NewCslLogger()
		return l, func() error { return nil }, err
	}
	l, err := NewZapLogger(filename, debug)
	if err != nil {
		return nil, nil, err
	}
	return l, l.Sync, nil
}
