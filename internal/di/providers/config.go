package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/tentoapp/tento-server/internal/config"
	"github.com/tentoapp/tento-server/internal/logger"
)

// ProvideConfig loads and validates the application configuration.
func ProvideConfig(_ do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger builds the application logger from config.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return logger.New(logger.Config{
		Writer:      os.Stdout,
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
	}), nil
}
