package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/taskrabbit/internal/models"
	"github.com/adanyl0v/taskrabbit/internal/storage"
	"github.com/adanyl0v/taskrabbit/internal/validation"
)

func TestPreferencesService_Defaults(t *testing.T) {
	ctx := context.Background()
	svc := NewPreferencesService(ctx, zerolog.Nop(), newTestStorage(t))
	assert.Equal(t, models.DefaultPreferences(), svc.Preferences(ctx))
}

func TestPreferencesService_UpdatePersists(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	svc := NewPreferencesService(ctx, zerolog.Nop(), s)

	prefs := models.DefaultPreferences()
	prefs.Theme = models.ThemeDark
	prefs.DefaultView = models.ViewKanban
	prefs.ItemsPerPage = 50

	updated, err := svc.UpdatePreferences(ctx, prefs)
	require.NoError(t, err)
	assert.Equal(t, prefs, *updated)

	reloaded := NewPreferencesService(ctx, zerolog.Nop(), s)
	assert.Equal(t, prefs, reloaded.Preferences(ctx))
}

func TestPreferencesService_UpdateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc := NewPreferencesService(ctx, zerolog.Nop(), newTestStorage(t))

	prefs := models.DefaultPreferences()
	prefs.ItemsPerPage = 0
	prefs.Theme = "neon"

	_, err := svc.UpdatePreferences(ctx, prefs)
	require.Error(t, err)
	fields := validation.Fields(err)
	assert.Contains(t, fields, "itemsPerPage")
	assert.Contains(t, fields, "theme")
	assert.Equal(t, models.DefaultPreferences(), svc.Preferences(ctx))
}

func TestPreferencesService_InvalidStoredFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.Set(ctx, storage.UserPreferencesKey, map[string]any{"theme": "neon"}))

	svc := NewPreferencesService(ctx, zerolog.Nop(), s)
	assert.Equal(t, models.DefaultPreferences(), svc.Preferences(ctx))
}
