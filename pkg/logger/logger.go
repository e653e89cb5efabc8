package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"inventory-service/pkg/config"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// InitLogger initializes the global logger from the application configuration
func InitLogger(conf *config.Config) {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		if conf.Server.Env == "development" {
			cfg = zap.NewDevelopmentConfig()
		}
		cfg.OutputPaths = []string{"stdout"}

		level, err := zapcore.ParseLevel(conf.Log.Level)
		if err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}

		logger, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		instance = logger
		zap.ReplaceGlobals(instance)
	})
}

// GetLogger returns the global logger, initializing a default one if needed
func GetLogger() *zap.Logger {
	if instance == nil {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		logger, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		instance = logger
	}
	return instance
}
