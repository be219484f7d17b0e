package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/isdmx/codescore/config"
)

// ServiceName is attached to every log entry
const ServiceName = "codescore"

// presets maps a logging mode to its base zap configuration
var presets = map[string]func() zap.Config{
	"development": func() zap.Config {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg
	},
	"production": func() zap.Config {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.Sampling = nil
		return cfg
	},
}

// NewFromConfig creates a logger from the logging section of the configuration
func NewFromConfig(cfg *config.Config) (*zap.Logger, error) {
	return New(cfg.Logging.Mode, cfg.Logging.Level)
}

// New builds a logger for mode ("development" or "production") at level.
func New(mode, level string) (*zap.Logger, error) {
	preset, ok := presets[mode]
	if !ok {
		return nil, fmt.Errorf("invalid logging mode: %s, must be 'production' or 'development'", mode)
	}

	logLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging level: %q: %w", level, err)
	}

	cfg := preset()
	cfg.Level = zap.NewAtomicLevelAt(logLevel)
	// stdout belongs to the MCP stdio transport
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build(zap.Fields(zap.String("service", ServiceName)))
}
