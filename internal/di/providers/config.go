// Package providers contains dependency injection providers for the PromptKeep server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/config"
	"github.com/promptkeepapp/promptkeep-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
		FilePath:    cfg.Logger.File,
	})

	log.Info("Starting PromptKeep Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_dir", cfg.Storage.DataDir,
		"prompts_dir", cfg.Storage.PromptsDir,
	)

	return log, nil
}
