package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskrabbit/internal/models"
	"github.com/adanyl0v/taskrabbit/internal/storage"
	"github.com/adanyl0v/taskrabbit/internal/validation"
)

type preferencesServiceImpl struct {
	logger  zerolog.Logger
	storage *storage.LocalStorage

	mu    sync.RWMutex
	prefs models.UserPreferences
}

// NewPreferencesService loads the stored preferences, falling back to
// the defaults when they are absent or unreadable.
func NewPreferencesService(
	ctx context.Context,
	logger zerolog.Logger,
	localStorage *storage.LocalStorage,
) PreferencesService {
	s := &preferencesServiceImpl{
		logger:  logger,
		storage: localStorage,
		prefs:   models.DefaultPreferences(),
	}

	prefs := models.DefaultPreferences()
	found, err := localStorage.Get(ctx, storage.UserPreferencesKey, &prefs)
	switch {
	case err != nil:
		logger.Error().
			Err(err).
			Msg("failed to load preferences, using defaults")
	case !found:
		logger.Debug().Msg("no stored preferences, using defaults")
	case validation.Preferences(prefs) != nil:
		logger.Warn().Msg("stored preferences are invalid, using defaults")
	default:
		s.prefs = prefs
	}
	return s
}

func (s *preferencesServiceImpl) Preferences(_ context.Context) models.UserPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.prefs
}

func (s *preferencesServiceImpl) UpdatePreferences(
	ctx context.Context,
	prefs models.UserPreferences,
) (*models.UserPreferences, error) {
	err := validation.Preferences(prefs)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("invalid preferences")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs = prefs
	err = s.storage.Set(context.WithoutCancel(ctx), storage.UserPreferencesKey, prefs)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to persist preferences")
	}

	s.logger.Info().
		Str("theme", string(prefs.Theme)).
		Str("default_view", string(prefs.DefaultView)).
		Msg("updated preferences")
	out := prefs
	return &out, nil
}
