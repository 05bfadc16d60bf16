package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge/internal/cli"
	"github.com/lingobridge/lingobridge/internal/config"
	"github.com/lingobridge/lingobridge/internal/logging"
	"github.com/lingobridge/lingobridge/internal/settings"
)

// bootstrap loads the env file, configuration, logger, and settings store
// shared by every command.
func bootstrap(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, *settings.Store, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("initialize logger: %w", err)
	}

	snapshot, err := cfg.Settings()
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("build settings: %w", err)
	}

	return cfg, logger, settings.NewStore(snapshot), nil
}
