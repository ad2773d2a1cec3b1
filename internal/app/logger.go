package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskrabbit/internal/config"
)

// NewDefaultLogger is used until the config is read.
func NewDefaultLogger(w io.Writer) zerolog.Logger {
	zerolog.TimestampFieldName = "timestamp"

	return zerolog.New(w).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()
}

// NewApplicationLogger picks the level and the output format for the
// configured env. An explicit log level overrides the env default.
func NewApplicationLogger(logger zerolog.Logger, cfg *config.Config, w io.Writer) (zerolog.Logger, error) {
	var level zerolog.Level
	switch cfg.Env {
	case config.EnvDev:
		level = zerolog.DebugLevel
	case config.EnvProd:
		level = zerolog.InfoLevel
	case config.EnvLocal:
		level = zerolog.TraceLevel

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = w
		w = consoleWriter
	default:
		logger.Error().
			Str("env", cfg.Env).
			Msg("unknown env")
		return logger, fmt.Errorf("unknown env: %s", cfg.Env)
	}

	if cfg.LogLevel != "" {
		parsed, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Error().
				Err(err).
				Str("log_level", cfg.LogLevel).
				Msg("invalid log level")
			return logger, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		level = parsed
	}

	logger = logger.Output(w).Level(level)
	logger.Debug().
		Str("env", cfg.Env).
		Str("level", level.String()).
		Msg("initialized application logger")
	return logger, nil
}
