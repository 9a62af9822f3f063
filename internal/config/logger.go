package config

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// InitLogger initializes the global zap logger. Log output goes to stderr so
// that commands can stream JSONL on stdout.
func InitLogger(cfg models.LogConfig) error {
	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "", "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return eris.Errorf("config: unsupported log format %q", cfg.Format)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)
	zapCfg.OutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
