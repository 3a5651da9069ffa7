package logging

import (
	"fmt"

	"github.com/mikey/orden-vaciado/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger builds the daemon logger from logging.level and logging.format.
// Unknown levels fall back to info
func InitLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.GetString("logging.level"))
	if err != nil {
		level = zapcore.InfoLevel
	}
	return build("orden-vaciado", level, cfg.GetString("logging.format") == "json")
}

// InitConsoleLogger builds the logger of the one-shot command
func InitConsoleLogger(verbose bool, jsonFormat bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	return build("orden-fetch", level, jsonFormat)
}

func build(component string, level zapcore.Level, jsonFormat bool) (*zap.Logger, error) {
	var logConfig zap.Config
	if jsonFormat {
		logConfig = zap.NewProductionConfig()
		logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logConfig.Level = zap.NewAtomicLevelAt(level)
	// stdout carries the JSON document in the CLI
	logConfig.OutputPaths = []string{"stderr"}
	logConfig.InitialFields = map[string]interface{}{"component": component}

	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s logger: %w", component, err)
	}
	return logger, nil
}
