package log

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger writes every entry to the console and, when a path is given, to a
// log file. The entry point owns it and must call Sync before exiting.
type ZapLogger struct {
	logger *zap.SugaredLogger
	file   *os.File
}

func NewZapLogger(filename string, debug bool) (*ZapLogger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stdout), level),
	}

	var file *os.File
	if filename != "" {
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log dir: %w", err)
		}
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(f), level))
	}

	return newZapLogger(zap.New(zapcore.NewTee(cores...)), file), nil
}

func newZapLogger(logger *zap.Logger, file *os.File) *ZapLogger {
	return &ZapLogger{
		logger: logger.Sugar(),
		file:   file,
	}
}

func (l *ZapLogger) Sync() error {
	_ = l.logger.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *ZapLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

func (l *ZapLogger) Alert(ctx context.Context, format string, args ...interface{}) {
	l.logger.With("severity", "alert").Errorf(format, args...)
}

func (l *ZapLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *ZapLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *ZapLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l *ZapLogger) Notice(ctx context.Context, format string, args ...interface{}) {
	l.logger.With("severity", "notice").Infof(format, args...)
}

func (l *ZapLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	l.logger.With("severity", "critical").Errorf(format, args...)
}

func (l *ZapLogger) Emergency(ctx context.Context, format string, args ...interface{}) {
	l.logger.With("severity", "emergency").Errorf(format, args...)
}
