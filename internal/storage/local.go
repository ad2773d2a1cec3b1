package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Version is written into every envelope. It is not used for
// migrations yet.
const Version = 1

// Envelope wraps every stored value.
type Envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Version   int             `json:"version"`
	ExpiresAt int64           `json:"expiresAt,omitempty"`
}

func (e Envelope) expired(now time.Time) bool {
	return e.ExpiresAt != 0 && now.UnixMilli() >= e.ExpiresAt
}

// LocalStorage stores JSON values in envelopes on top of a Backend.
// Every method reports failures to the caller, it never swallows them.
type LocalStorage struct {
	logger  zerolog.Logger
	backend Backend
	now     func() time.Time
}

func NewLocalStorage(logger zerolog.Logger, backend Backend) *LocalStorage {
	return &LocalStorage{
		logger:  logger,
		backend: backend,
		now:     time.Now,
	}
}

func (s *LocalStorage) Set(ctx context.Context, key string, value any) error {
	return s.set(ctx, key, value, 0)
}

// SetWithExpiry stores value so that it reads as absent once ttl has passed.
func (s *LocalStorage) SetWithExpiry(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("invalid ttl %s for key %s", ttl, key)
	}
	return s.set(ctx, key, value, ttl)
}

func (s *LocalStorage) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	now := s.now()
	envelope := Envelope{
		Data:      data,
		Timestamp: now.UnixMilli(),
		Version:   Version,
	}
	if ttl > 0 {
		envelope.ExpiresAt = now.Add(ttl).UnixMilli()
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope for key %s: %w", key, err)
	}

	err = s.backend.Set(ctx, key, raw)
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	s.logger.Trace().
		Str("key", key).
		Int("size", len(raw)).
		Msg("stored value")
	return nil
}

// Get decodes the value stored under key into dst. It returns false
// with a nil error when the key is absent or expired.
func (s *LocalStorage) Get(ctx context.Context, key string, dst any) (bool, error) {
	envelope, found, err := s.envelope(ctx, key)
	if err != nil || !found {
		return false, err
	}

	err = json.Unmarshal(envelope.Data, dst)
	if err != nil {
		return false, fmt.Errorf("%w: key %s: %w", ErrCorrupted, key, err)
	}
	return true, nil
}

func (s *LocalStorage) envelope(ctx context.Context, key string) (*Envelope, bool, error) {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	var envelope Envelope
	err = json.Unmarshal(raw, &envelope)
	if err != nil {
		return nil, false, fmt.Errorf("%w: key %s: %w", ErrCorrupted, key, err)
	}
	if envelope.Data == nil {
		return nil, false, fmt.Errorf("%w: key %s has no data", ErrCorrupted, key)
	}

	if envelope.Version > Version {
		s.logger.Warn().
			Str("key", key).
			Int("version", envelope.Version).
			Int("supported_version", Version).
			Msg("stored value has a newer version")
	}

	if envelope.expired(s.now()) {
		s.logger.Debug().
			Str("key", key).
			Msg("stored value expired")
		err = s.backend.Delete(ctx, key)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("key", key).
				Msg("failed to delete expired value")
		}
		return nil, false, nil
	}
	return &envelope, true, nil
}

func (s *LocalStorage) Remove(ctx context.Context, key string) error {
	err := s.backend.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, found, err := s.envelope(ctx, key)
	return found, err
}

func (s *LocalStorage) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

func (s *LocalStorage) Clear(ctx context.Context) error {
	err := s.backend.Clear(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return nil
}
