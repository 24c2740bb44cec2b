package logger

import (
	"go.uber.org/zap"
)

// New returns a zap.Logger configured for the environment:
// prod gets JSON at info level, everything else gets the dev console.
func New(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
