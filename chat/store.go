package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the durable, append-only chat log. Every operation is scoped by
// (session id, owner id) together; a session id alone never grants access.
type Store interface {
	// Create allocates a new empty session for the owner.
	Create(ctx context.Context, ownerID string) (string, error)

	// AppendExchange atomically appends one (question, answer) pair. When no
	// session with the id exists it creates one owned by ownerID with this
	// exchange as its first pair; when the id exists under a different owner
	// it fails with ErrNotOwner.
	AppendExchange(ctx context.Context, sessionID, ownerID, question, answer string) error

	// VerifyOwner reports whether ownerID may use the session. An absent
	// session passes (a later append will create it); a session held by a
	// different owner fails with ErrNotOwner.
	VerifyOwner(ctx context.Context, sessionID, ownerID string) error

	// Get returns the session, or ErrNotFound when it is absent or owned by
	// someone else.
	Get(ctx context.Context, sessionID, ownerID string) (Session, error)

	// ListIDs returns the ids of every session the owner has.
	ListIDs(ctx context.Context, ownerID string) ([]string, error)

	// PruneEmpty deletes the owner's sessions that never recorded an
	// exchange and reports how many were removed.
	PruneEmpty(ctx context.Context, ownerID string) (int, error)
}

// PostgresStore keeps sessions in the chat_sessions table. The paired append
// is a single upsert statement, so row-level atomicity in Postgres gives the
// question/answer pairing invariant under concurrent appends without any
// application-side locking.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, ownerID string) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx, `
        INSERT INTO chat_sessions (id, owner_id)
        VALUES ($1, $2)
    `, id, ownerID)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) AppendExchange(ctx context.Context, sessionID, ownerID, question, answer string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("session id %q: %w", sessionID, ErrNotFound)
	}

	// Upsert in one statement: a fresh id inserts the first pair, a known id
	// appends, and the WHERE clause turns a cross-owner append into zero
	// affected rows.
	tag, err := s.pool.Exec(ctx, `
        INSERT INTO chat_sessions (id, owner_id, questions, answers)
        VALUES ($1, $2, ARRAY[$3::text], ARRAY[$4::text])
        ON CONFLICT (id) DO UPDATE
        SET questions  = chat_sessions.questions || EXCLUDED.questions,
            answers    = chat_sessions.answers   || EXCLUDED.answers,
            updated_at = NOW()
        WHERE chat_sessions.owner_id = EXCLUDED.owner_id
    `, sessionID, ownerID, question, answer)
	if err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotOwner
	}
	return nil
}

func (s *PostgresStore) VerifyOwner(ctx context.Context, sessionID, ownerID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("session id %q: %w", sessionID, ErrNotFound)
	}

	var owner string
	err := s.pool.QueryRow(ctx, `
        SELECT owner_id FROM chat_sessions WHERE id = $1
    `, sessionID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("query session owner: %w", err)
	}
	if owner != ownerID {
		return ErrNotOwner
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID, ownerID string) (Session, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return Session{}, ErrNotFound
	}

	var session Session
	err := s.pool.QueryRow(ctx, `
        SELECT id, owner_id, questions, answers, created_at, updated_at
        FROM chat_sessions
        WHERE id = $1 AND owner_id = $2
    `, sessionID, ownerID).Scan(
		&session.ID,
		&session.OwnerID,
		&session.Questions,
		&session.Answers,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("query session: %w", err)
	}
	return session, nil
}

func (s *PostgresStore) ListIDs(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id FROM chat_sessions
        WHERE owner_id = $1
        ORDER BY created_at
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return ids, nil
}

func (s *PostgresStore) PruneEmpty(ctx context.Context, ownerID string) (int, error) {
	tag, err := s.pool.Exec(ctx, `
        DELETE FROM chat_sessions
        WHERE owner_id = $1
          AND cardinality(questions) = 0
          AND cardinality(answers) = 0
    `, ownerID)
	if err != nil {
		return 0, fmt.Errorf("prune empty sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

var _ Store = (*PostgresStore)(nil)
