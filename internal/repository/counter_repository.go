package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CounterRepository provides atomic increment-and-read counters keyed by
// (kind, scope). It backs identifier allocation, so the increment must be a
// single atomic statement: two concurrent creations may never observe the
// same value.
type CounterRepository interface {
	Next(ctx context.Context, kind, scope string) (int64, error)
}

type counterRepository struct {
	pool *pgxpool.Pool
}

// NewCounterRepository builds a Postgres-backed counter store.
func NewCounterRepository(pool *pgxpool.Pool) CounterRepository {
	return &counterRepository{pool: pool}
}

func (r *counterRepository) Next(ctx context.Context, kind, scope string) (int64, error) {
	const query = `
        INSERT INTO id_counters (kind, scope, value)
        VALUES ($1, $2, 1)
        ON CONFLICT (kind, scope)
        DO UPDATE SET value = id_counters.value + 1
        RETURNING value`
	var value int64
	if err := r.pool.QueryRow(ctx, query, kind, scope).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
