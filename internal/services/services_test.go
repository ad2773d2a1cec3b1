package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskrabbit/internal/storage"
)

var errBackendDown = errors.New("backend down")

// flakyBackend serves reads from memory and fails writes while broken is set.
type flakyBackend struct {
	*storage.MemoryBackend

	mu     sync.Mutex
	broken bool
}

func newFlakyBackend() *flakyBackend {
	return &flakyBackend{MemoryBackend: storage.NewMemoryBackend()}
}

func (b *flakyBackend) setBroken(broken bool) {
	b.mu.Lock()
	b.broken = broken
	b.mu.Unlock()
}

func (b *flakyBackend) Set(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	broken := b.broken
	b.mu.Unlock()
	if broken {
		return errBackendDown
	}
	return b.MemoryBackend.Set(ctx, key, value)
}

func (b *flakyBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	broken := b.broken
	b.mu.Unlock()
	if broken {
		return errBackendDown
	}
	return b.MemoryBackend.Delete(ctx, key)
}

func newTestStorage(t *testing.T) *storage.LocalStorage {
	t.Helper()
	return storage.NewLocalStorage(zerolog.Nop(), storage.NewMemoryBackend())
}

func ptr[T any](v T) *T {
	return &v
}
