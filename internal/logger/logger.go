package logger

import (
	"go.uber.org/zap"
)

// New returns a development logger for env "development" and a production
// JSON logger otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	return zap.NewProduction()
}
