// Package logging builds the process logger.
package logging

import (
	"go.uber.org/zap"

	"github.com/example/garage/internal/config"
)

// New builds a zap logger: JSON production encoding for format "json",
// console development encoding otherwise.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	// stdout belongs to command output
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}
