package app

import (
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskrabbit/internal/config"
)

// ReadConfig reads the YAML file at path with env overrides, or only
// the env when path is empty.
func ReadConfig(logger zerolog.Logger, path string) (*config.Config, error) {
	var reader config.Reader = config.NewEnvReader()
	if path != "" {
		reader = config.NewFileReader(path)
	}

	cfg, err := reader.Read()
	if err != nil {
		logger.Error().
			Err(err).
			Str("path", path).
			Msg("failed to read config")
		return nil, err
	}
	logger.Debug().
		Str("env", cfg.Env).
		Str("storage_driver", cfg.Storage.Driver).
		Str("auth_provider", cfg.Auth.Provider).
		Msg("read config")
	return cfg, nil
}
