package logging

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/RKrahl/photoidx/consts"
)

type loggerKeyType string

const loggerKey = loggerKeyType("logger")

// Config selects the log level and an optional rotated JSON log file.
type Config struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"maxsize"`
	MaxBackups int    `koanf:"maxbackups"`
}

var rootLogger *zap.Logger

func init() {
	rootLogger = zap.New(consoleCore(zapcore.WarnLevel))
}

func consoleCore(level zapcore.LevelEnabler) zapcore.Core {
	var cfg zapcore.EncoderConfig
	if consts.IsDevMode() {
		cfg = zap.NewDevelopmentEncoderConfig()
	} else {
		cfg = zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), level)
}

// Setup replaces the root logger. Console output goes to stderr, stdout
// is left to the command output. Extra cores, like the in-memory buffer
// of the server, are added to the tee.
func Setup(cfg Config, extra ...zapcore.Core) error {
	level := zapcore.WarnLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return fmt.Errorf("invalid log level '%s': %w", cfg.Level, err)
		}
	}
	if consts.IsDevMode() {
		level = zapcore.DebugLevel
	}
	cores := []zapcore.Core{consoleCore(level)}
	if cfg.File != "" {
		logfile := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		jsonEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.AddSync(logfile), level))
	}
	cores = append(cores, extra...)
	rootLogger = zap.New(zapcore.NewTee(cores...))
	rootLogger.Debug("Logging initialized", zap.Bool("devmode", consts.IsDevMode()), zap.Stringer("level", level))
	return nil
}

// Root returns the process wide logger.
func Root() *zap.Logger {
	return rootLogger
}

// From returns the logger of the current context, if no logger is available, returns the root logger
func From(ctx context.Context) *zap.Logger {
	l := ctx.Value(loggerKey)
	if l == nil {
		return rootLogger
	}
	return l.(*zap.Logger)
}

func SubFrom(ctx context.Context, name string) (*zap.Logger, context.Context) {
	logger := From(ctx).Named(name)
	return logger, Context(ctx, logger)
}

func Context(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = rootLogger
	}
	return context.WithValue(ctx, loggerKey, logger)
}

func FromWithNameAndFields(ctx context.Context, name string, fields ...zapcore.Field) (*zap.Logger, context.Context) {
	logger := From(ctx).With(fields...).Named(name)
	ctx = Context(ctx, logger)
	return logger, ctx
}

func FromWithFields(ctx context.Context, fields ...zapcore.Field) (*zap.Logger, context.Context) {
	logger := From(ctx).With(fields...)
	ctx = Context(ctx, logger)
	return logger, ctx
}
