package retrieval

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresEngine runs nearest-neighbour queries against the legal_chunks
// table using the pgvector distance operator.
type PostgresEngine struct {
	pool     *pgxpool.Pool
	minScore float64
}

func NewPostgresEngine(pool *pgxpool.Pool, minScore float64) *PostgresEngine {
	return &PostgresEngine{pool: pool, minScore: minScore}
}

func (e *PostgresEngine) Search(ctx context.Context, query []float32, k int) ([]Passage, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	probes := k * 10
	if probes < 10 {
		probes = 10
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET ivfflat.probes = %d", probes)); err != nil {
		return nil, fmt.Errorf("set ivfflat probes: %w", err)
	}

	// Secondary ORDER BY id pins the order of equidistant chunks to
	// insertion order, keeping repeated searches reproducible.
	rows, err := conn.Query(ctx, `
        SELECT
            content,
            (embedding <-> $1::vector) AS distance
        FROM legal_chunks
        ORDER BY embedding <-> $1::vector, id
        LIMIT $2
    `, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	passages := make([]Passage, 0, k)
	for rows.Next() {
		var text string
		var distance float64
		if scanErr := rows.Scan(&text, &distance); scanErr != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", scanErr)
		}
		passages = append(passages, Passage{Text: text, Score: 1 / (1 + distance)})
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return applyThreshold(passages, e.minScore), nil
}

var _ Engine = (*PostgresEngine)(nil)
