// Package logging builds the process logger and carries request-scoped
// loggers through contexts.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Format is console or json. Empty means console.
	Format string
	// File, when set, sends output to a size-rotated file instead of Output.
	File string
	// Output receives log lines when File is empty. Nil means stderr.
	Output io.Writer
}

// New builds a logger from o.
func New(o Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if o.Level != "" {
		l, err := zapcore.ParseLevel(o.Level)
		if err != nil {
			return nil, errors.Wrap(err, "log level")
		}
		level = l
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch o.Format {
	case "", "console":
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, errors.Errorf("unknown log format %q", o.Format)
	}

	var ws zapcore.WriteSyncer
	switch {
	case o.File != "":
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename: o.File,
			MaxSize:  100,
			MaxAge:   30,
		})
	case o.Output != nil:
		ws = zapcore.AddSync(o.Output)
	default:
		ws = zapcore.Lock(os.Stderr)
	}

	return zap.New(zapcore.NewCore(enc, ws, level)), nil
}

type ctxKey struct{}

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or the global zap logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.L()
	}
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.L()
}

// Discard returns a logger that drops everything.
func Discard() *zap.Logger { return zap.NewNop() }
