// Package logger builds the process-wide zap logger: JSON output in
// production, colored console output everywhere else.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates the logger for the given environment. Every line carries the
// service name so aggregated logs stay attributable.
func New(environment string) (*zap.Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.EncoderConfig.CallerKey = "caller"
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	return config.Build(
		zap.AddCaller(),
		zap.Fields(zap.String("service", "analytics-dashboard")),
	)
}
