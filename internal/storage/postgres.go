package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
    namespace  TEXT        NOT NULL,
    key        TEXT        NOT NULL,
    value      TEXT        NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (namespace, key)
)
`

// PostgresBackend keeps keys of one namespace in a shared kv_store table.
// The pool is owned by the caller.
type PostgresBackend struct {
	pool      *pgxpool.Pool
	namespace string
}

func NewPostgresBackend(ctx context.Context, pool *pgxpool.Pool, namespace string) (*PostgresBackend, error) {
	_, err := pool.Exec(ctx, postgresSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", wrapPostgresError(err))
	}
	return &PostgresBackend{
		pool:      pool,
		namespace: namespace,
	}, nil
}

func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	const selectValueQuery = `
SELECT value
FROM kv_store
WHERE namespace = $1 AND
      key = $2
`
	var value string
	err := b.pool.QueryRow(
		ctx,
		selectValueQuery,
		b.namespace,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("select value: %w", wrapPostgresError(err))
	}
	return []byte(value), nil
}

func (b *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	const upsertValueQuery = `
INSERT INTO kv_store (namespace,
                      key,
                      value,
                      updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (namespace, key) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at
`
	_, err := b.pool.Exec(
		ctx,
		upsertValueQuery,
		b.namespace,
		key,
		string(value),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert value: %w", wrapPostgresError(err))
	}
	return nil
}

func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	const deleteValueQuery = `
DELETE FROM kv_store
WHERE namespace = $1 AND
      key = $2
`
	_, err := b.pool.Exec(ctx, deleteValueQuery, b.namespace, key)
	if err != nil {
		return fmt.Errorf("delete value: %w", wrapPostgresError(err))
	}
	return nil
}

func (b *PostgresBackend) Keys(ctx context.Context) ([]string, error) {
	const selectKeysQuery = `
SELECT key
FROM kv_store
WHERE namespace = $1
ORDER BY key
`
	rows, err := b.pool.Query(ctx, selectKeysQuery, b.namespace)
	if err != nil {
		return nil, fmt.Errorf("select keys: %w", wrapPostgresError(err))
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect keys: %w", wrapPostgresError(err))
	}
	return keys, nil
}

func (b *PostgresBackend) Clear(ctx context.Context) error {
	const deleteNamespaceQuery = `
DELETE FROM kv_store
WHERE namespace = $1
`
	_, err := b.pool.Exec(ctx, deleteNamespaceQuery, b.namespace)
	if err != nil {
		return fmt.Errorf("clear values: %w", wrapPostgresError(err))
	}
	return nil
}

// Close is a no-op, the pool outlives the backend.
func (b *PostgresBackend) Close() error {
	return nil
}

func wrapPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgerrcode.IsConnectionException(pgErr.Code) ||
			pgerrcode.IsInsufficientResources(pgErr.Code) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
