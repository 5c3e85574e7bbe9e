package config

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger builds the process logger from cfg and installs it as the zap
// global. Development mode gets a console encoder.
func InitLogger(cfg LogConfig, dev bool) (*zap.Logger, error) {
	var zc zap.Config
	if dev || cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, eris.Wrapf(err, "config: parse log level %q", cfg.Level)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
