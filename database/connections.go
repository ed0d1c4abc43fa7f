package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool creates a connection pool and waits for the database to
// accept connections. The ping retries with exponential backoff so the
// service survives the database coming up slightly later than the process.
func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pingWithRetry(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres unreachable: %w", err)
	}

	return pool, nil
}

func pingWithRetry(ctx context.Context, pool *pgxpool.Pool) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		return pool.Ping(ctx)
	}

	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}
