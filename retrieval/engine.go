package retrieval

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mridul249/legalbot-backend/config"
)

// Passage is one retrieved corpus chunk, ranked by similarity.
type Passage struct {
	Text  string
	Score float64
}

// Engine answers nearest-neighbour queries over the pre-embedded corpus.
// Given the same query vector and k on an unchanged corpus, Search returns
// the same ordered result. An empty result is not an error.
type Engine interface {
	Search(ctx context.Context, query []float32, k int) ([]Passage, error)
}

// NewEngine selects the retrieval backend. The Postgres backend shares the
// application pool; the Qdrant backend dials its own gRPC connection.
func NewEngine(cfg config.Config, pool *pgxpool.Pool) (Engine, error) {
	switch cfg.Retrieval.Backend {
	case config.RetrievalPostgres:
		if pool == nil {
			return nil, fmt.Errorf("postgres retrieval backend requires a connection pool")
		}
		return NewPostgresEngine(pool, cfg.Retrieval.MinScore), nil
	case config.RetrievalQdrant:
		return NewQdrantEngine(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantCollection, cfg.Retrieval.MinScore)
	default:
		return nil, fmt.Errorf("unknown retrieval backend: %s", cfg.Retrieval.Backend)
	}
}

// applyThreshold drops passages below the score floor. Passages arrive
// sorted descending, so the first miss ends the scan.
func applyThreshold(passages []Passage, minScore float64) []Passage {
	if minScore <= 0 {
		return passages
	}
	for i, passage := range passages {
		if passage.Score < minScore {
			return passages[:i]
		}
	}
	return passages
}
