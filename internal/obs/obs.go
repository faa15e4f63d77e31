// Package obs wires up process-wide structured logging. It follows
// caddy's shape: a package-level *zap.Logger built once at startup,
// optionally writing through a rotating file sink, with per-connection
// lines tagged by a correlation id instead of a shared mutable state.
package obs

import (
	"os"

	"github.com/DeRuina/timberjack"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the process logger.
type Options struct {
	// Development switches to a human-readable console encoder instead
	// of JSON, and lowers the level to debug.
	Development bool
	// LogFile, when non-empty, adds a rotating file sink alongside
	// stderr.
	LogFile string
}

// NewLogger builds the process-wide logger described by opts.
func NewLogger(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	if opts.Development {
		level = zapcore.DebugLevel
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level),
	}

	if opts.LogFile != "" {
		rotator := &timberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     28,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(rotator), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return logger, nil
}

// ConnLogger returns a child logger tagged with a fresh connection
// correlation id, and the id itself, which the server stores as the
// connection's Session ID.
func ConnLogger(base *zap.Logger) (*zap.Logger, string) {
	id := uuid.NewString()
	return base.With(zap.String("conn_id", id)), id
}
