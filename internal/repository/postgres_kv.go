package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresKV struct {
	pool *pgxpool.Pool
}

func NewPostgresKV(pool *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{pool: pool}
}

func (r *PostgresKV) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS portal_state (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create portal_state: %w", err)
	}
	return nil
}

func (r *PostgresKV) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM portal_state WHERE key = $1`

	var value string
	if err := r.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *PostgresKV) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO portal_state (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query, key, value)
	return err
}

func (r *PostgresKV) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM portal_state WHERE key = $1`
	_, err := r.pool.Exec(ctx, query, key)
	return err
}
