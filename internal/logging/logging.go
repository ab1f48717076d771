// Package logging builds the zap logger shared by the CLI, TUI and server.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rebeliceyang/lazyfacet/internal/config"
)

// New builds a logger from configuration
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	if cfg.Output != "" {
		zc.OutputPaths = []string{cfg.Output}
	}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("lazyfacet"), nil
}
