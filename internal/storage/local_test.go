package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func newTestLocalStorage(backend Backend) *LocalStorage {
	return NewLocalStorage(zerolog.Nop(), backend)
}

func TestLocalStorage_SetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestLocalStorage(NewMemoryBackend())

	want := sample{Name: "tasks", Count: 3, Tags: []string{"a", "b"}}
	require.NoError(t, s.Set(ctx, "k", want))

	var got sample
	found, err := s.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestLocalStorage_GetNeverSetKey(t *testing.T) {
	s := newTestLocalStorage(NewMemoryBackend())

	var got sample
	found, err := s.Get(context.Background(), "missing", &got)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestLocalStorage_RemoveThenGet(t *testing.T) {
	ctx := context.Background()
	s := newTestLocalStorage(NewMemoryBackend())

	require.NoError(t, s.Set(ctx, "token", "abc"))
	require.NoError(t, s.Remove(ctx, "token"))

	var got string
	found, err := s.Get(ctx, "token", &got)
	assert.NoError(t, err)
	assert.False(t, found)

	// removing twice is fine
	assert.NoError(t, s.Remove(ctx, "token"))
}

func TestLocalStorage_WritesEnvelope(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := newTestLocalStorage(backend)
	fixed := time.UnixMilli(1700000000000)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.Set(ctx, "k", []int{1, 2}))

	raw, err := backend.Get(ctx, "k")
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, Version, envelope.Version)
	assert.Equal(t, fixed.UnixMilli(), envelope.Timestamp)
	assert.JSONEq(t, `[1,2]`, string(envelope.Data))
	assert.Zero(t, envelope.ExpiresAt)
}

func TestLocalStorage_CorruptedValue(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := newTestLocalStorage(backend)

	require.NoError(t, backend.Set(ctx, "broken", []byte("{not json")))

	var got sample
	found, err := s.Get(ctx, "broken", &got)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrCorrupted)
}

func TestLocalStorage_TypeMismatchIsCorruption(t *testing.T) {
	ctx := context.Background()
	s := newTestLocalStorage(NewMemoryBackend())

	require.NoError(t, s.Set(ctx, "k", "a string"))

	var got []int
	found, err := s.Get(ctx, "k", &got)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrCorrupted)
}

func TestLocalStorage_Expiry(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := newTestLocalStorage(backend)
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.SetWithExpiry(ctx, "cache", "v", time.Minute))

	exists, err := s.Exists(ctx, "cache")
	require.NoError(t, err)
	assert.True(t, exists)

	now = now.Add(2 * time.Minute)
	var got string
	found, err := s.Get(ctx, "cache", &got)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = backend.Get(ctx, "cache")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.Error(t, s.SetWithExpiry(ctx, "cache", "v", 0))
}

func TestLocalStorage_KeysAndClear(t *testing.T) {
	ctx := context.Background()
	s := newTestLocalStorage(NewMemoryBackend())

	require.NoError(t, s.Set(ctx, TasksKey, []string{}))
	require.NoError(t, s.Set(ctx, AuthTokenKey, "t"))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{AuthTokenKey, TasksKey}, keys)

	require.NoError(t, s.Clear(ctx))
	keys, err = s.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
