package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the corpus and chat tables if they are missing.
// The legal_chunks table is populated out-of-band by the ingestion tooling;
// this service only reads it. The embedding column width must match the
// configured embedder dimension, so a wrong dimension fails here at startup
// rather than on the first request.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}

	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS legal_chunks (
			id BIGSERIAL PRIMARY KEY,
			page_number INT,
			content TEXT NOT NULL,
			char_count INT,
			word_count INT,
			token_count INT,
			embedding VECTOR(%d) NOT NULL
		)`, dimension),
		"CREATE INDEX IF NOT EXISTS idx_legal_chunks_embedding ON legal_chunks USING ivfflat (embedding vector_l2_ops)",
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id UUID PRIMARY KEY,
			owner_id TEXT NOT NULL,
			questions TEXT[] NOT NULL DEFAULT '{}',
			answers TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"CREATE INDEX IF NOT EXISTS idx_chat_sessions_owner ON chat_sessions(owner_id)",
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}
