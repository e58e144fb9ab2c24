package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mikey/email-triage/internal/config"
)

// InitLogger initializes the daemon logger from logging.level and logging.format
func InitLogger(cfg *config.Config) (*zap.Logger, error) {
	logConfig := baseConfig(cfg.GetString("logging.format") == "json")
	logConfig.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.GetString("logging.level")))
	return build(logConfig)
}

// InitConsoleLogger initializes a CLI logger. Output goes to stderr so that
// command results on stdout stay machine readable.
func InitConsoleLogger(verbose bool, jsonFormat bool) (*zap.Logger, error) {
	logConfig := baseConfig(jsonFormat)
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	logConfig.Level = zap.NewAtomicLevelAt(level)
	logConfig.OutputPaths = []string{"stderr"}
	return build(logConfig)
}

// ParseLevel maps a level name to a zap level, defaulting to info
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func baseConfig(jsonFormat bool) zap.Config {
	if jsonFormat {
		return zap.NewProductionConfig()
	}
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return logConfig
}

func build(logConfig zap.Config) (*zap.Logger, error) {
	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
