package storage

import (
	"context"
	"errors"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrUnavailable = errors.New("storage unavailable")
	ErrCorrupted   = errors.New("stored value is corrupted")
)

// Backend is a raw key-value store. Implementations must return
// ErrKeyNotFound from Get when the key is absent and must treat
// deleting an absent key as a success.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	Close() error
}
