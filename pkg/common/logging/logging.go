// Package logging provides structured logging for the gochan library.
//
// The core channel primitive never logs; this package exists for the
// components layered on top of it (worker pool, examples) that want
// leveled, structured output without dictating a logging framework to
// their callers.
package logging

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the leveled logging interface used across the library.
// It is satisfied by *zap.SugaredLogger.
type Logger interface {
	Debug(v ...any)
	Info(v ...any)
	Warn(v ...any)
	Error(v ...any)

	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)

	Sync() error
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return zap.NewNop().Sugar()
}

// FileConfig configures rotating file output.
type FileConfig struct {
	Filepath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Config configures a Logger built by NewLogger.
type Config struct {
	Level   string
	Console bool

	File FileConfig
}

type lumberjackSink struct{ *lumberjack.Logger }

func (lumberjackSink) Sync() error { return nil }

// NewLogger builds a zap-backed Logger from cfg. When neither console nor
// file output is configured, all output is discarded.
func NewLogger(cfg Config) (Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",

		LineEnding:  zapcore.DefaultLineEnding,
		EncodeLevel: zapcore.CapitalLevelEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			const layout = "2006/01/02 15:04:05.000"
			enc.AppendString(t.Format(layout))
		},
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	outputPaths := make([]string, 0)
	errorOutputPaths := make([]string, 0)

	if cfg.File.Filepath != "" {
		ll := lumberjack.Logger{
			Filename:   cfg.File.Filepath,
			MaxSize:    cfg.File.MaxSize,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAge,
			Compress:   cfg.File.Compress,

			LocalTime: true,
		}

		if err := zap.RegisterSink("lumberjack", func(u *url.URL) (zap.Sink, error) {
			return lumberjackSink{Logger: &ll}, nil
		}); err != nil {
			return nil, err
		}

		outputPaths = append(outputPaths, fmt.Sprintf("lumberjack:%s", cfg.File.Filepath))
		errorOutputPaths = append(errorOutputPaths, fmt.Sprintf("lumberjack:%s", cfg.File.Filepath))
	}

	if cfg.Console {
		outputPaths = append(outputPaths, os.Stdout.Name())
		errorOutputPaths = append(errorOutputPaths, os.Stderr.Name())
	}

	if len(outputPaths) == 0 {
		outputPaths = []string{os.DevNull}
	}
	if len(errorOutputPaths) == 0 {
		errorOutputPaths = []string{os.DevNull}
	}

	zapConfig := zap.Config{
		Level:            level,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: errorOutputPaths,
	}

	logger, err := zapConfig.Build(zap.AddStacktrace(zapcore.PanicLevel))
	if err != nil {
		return nil, err
	}

	return logger.Sugar(), nil
}
