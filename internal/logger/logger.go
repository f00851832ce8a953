package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new structured logger. Extra sinks (file paths or zap sink
// URLs) receive the same entries as stdout.
func New(env string, sinks ...string) (*zap.Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// Always log to stdout for container compatibility
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	for _, sink := range sinks {
		if sink != "" {
			config.OutputPaths = append(config.OutputPaths, sink)
		}
	}

	// Ensure structured JSON format in production
	if env == "production" {
		config.Encoding = "json"
	}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return nil, err
	}

	return logger, nil
}
