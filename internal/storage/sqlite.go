package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at DATETIME NOT NULL
)
`

type SQLiteBackend struct {
	db *sqlx.DB
}

func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	err := os.MkdirAll(filepath.Dir(dbPath), 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(sqliteSchema)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	const selectValueQuery = `SELECT value FROM kv_store WHERE key = ?`

	var value string
	err := b.db.GetContext(ctx, &value, selectValueQuery, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("select value: %w", err)
	}
	return []byte(value), nil
}

func (b *SQLiteBackend) Set(ctx context.Context, key string, value []byte) error {
	const upsertValueQuery = `
INSERT INTO kv_store (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value,
                                updated_at = excluded.updated_at
`
	_, err := b.db.ExecContext(ctx, upsertValueQuery, key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert value: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	const deleteValueQuery = `DELETE FROM kv_store WHERE key = ?`

	_, err := b.db.ExecContext(ctx, deleteValueQuery, key)
	if err != nil {
		return fmt.Errorf("delete value: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Keys(ctx context.Context) ([]string, error) {
	const selectKeysQuery = `SELECT key FROM kv_store ORDER BY key`

	var keys []string
	err := b.db.SelectContext(ctx, &keys, selectKeysQuery)
	if err != nil {
		return nil, fmt.Errorf("select keys: %w", err)
	}
	return keys, nil
}

func (b *SQLiteBackend) Clear(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM kv_store`)
	if err != nil {
		return fmt.Errorf("clear values: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
