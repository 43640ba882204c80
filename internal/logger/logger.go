package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "socials-sync"

// New builds the process logger: JSON at info level for production and staging,
// colored console output at debug level everywhere else
func New(environment string) (*zap.Logger, error) {
	return configFor(environment).Build(
		zap.AddCaller(),
		zap.Fields(
			zap.String("service", serviceName),
			zap.String("environment", environment),
		),
	)
}

func configFor(environment string) zap.Config {
	var cfg zap.Config

	switch environment {
	case "production", "staging":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	return cfg
}
