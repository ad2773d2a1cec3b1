package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"
)

// FileBackend keeps every key in a single JSON object on disk. Each
// operation takes an exclusive lock on a sibling lock file and reads the
// store whole. Writes go to a temporary file that is renamed over the
// store, so a crash never leaves a half written store behind.
type FileBackend struct {
	filePath string
	lockPath string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	filePath := filepath.Join(dir, ".taskrabbit", "store.json")

	err := os.MkdirAll(filepath.Dir(filePath), 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FileBackend{
		filePath: filePath,
		lockPath: filePath + ".lock",
	}, nil
}

func (b *FileBackend) Path() string {
	return b.filePath
}

func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.withLock(func() error {
		values, err := b.readValues()
		if err != nil {
			return err
		}
		raw, ok := values[key]
		if !ok {
			return ErrKeyNotFound
		}
		value = raw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *FileBackend) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for key %s is not valid json", key)
	}
	return b.withLock(func() error {
		values, err := b.readValues()
		if err != nil {
			return err
		}
		values[key] = json.RawMessage(value)
		return b.writeValues(values)
	})
}

func (b *FileBackend) Delete(_ context.Context, key string) error {
	return b.withLock(func() error {
		values, err := b.readValues()
		if err != nil {
			return err
		}
		if _, ok := values[key]; !ok {
			return nil
		}
		delete(values, key)
		return b.writeValues(values)
	})
}

func (b *FileBackend) Keys(_ context.Context) ([]string, error) {
	var keys []string
	err := b.withLock(func() error {
		values, err := b.readValues()
		if err != nil {
			return err
		}
		keys = make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *FileBackend) Clear(_ context.Context) error {
	return b.withLock(func() error {
		return b.writeValues(map[string]json.RawMessage{})
	})
}

func (b *FileBackend) Close() error {
	return nil
}

// withLock locks the sibling lock file rather than the store itself,
// because the store is replaced on every write.
func (b *FileBackend) withLock(fn func() error) error {
	lockFile, err := os.OpenFile(b.lockPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	defer lockFile.Close()

	err = syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX)
	if err != nil {
		return fmt.Errorf("failed to lock file: %w", err)
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	return fn()
}

func (b *FileBackend) readValues() (map[string]json.RawMessage, error) {
	values := make(map[string]json.RawMessage)

	data, err := os.ReadFile(b.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}

	err = json.Unmarshal(data, &values)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupted, b.filePath, err)
	}
	return values, nil
}

func (b *FileBackend) writeValues(values map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal values: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.filePath), filepath.Base(b.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	closeErr := tmp.Close()
	if err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close temp file: %w", closeErr)
	}

	err = os.Chmod(tmpPath, 0o644)
	if err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	err = os.Rename(tmpPath, b.filePath)
	if err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
