package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs local development
// without a database and the concurrency tests; it honors the same ownership
// and pairing contract as the Postgres store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Create(ctx context.Context, ownerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := time.Now()
	s.sessions[id] = &Session{
		ID:        id,
		OwnerID:   ownerID,
		Questions: []string{},
		Answers:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id, nil
}

func (s *MemoryStore) AppendExchange(ctx context.Context, sessionID, ownerID, question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		now := time.Now()
		session = &Session{
			ID:        sessionID,
			OwnerID:   ownerID,
			CreatedAt: now,
		}
		s.sessions[sessionID] = session
	}
	if session.OwnerID != ownerID {
		return ErrNotOwner
	}

	session.Questions = append(session.Questions, question)
	session.Answers = append(session.Answers, answer)
	session.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) VerifyOwner(ctx context.Context, sessionID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if ok && session.OwnerID != ownerID {
		return ErrNotOwner
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionID, ownerID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.OwnerID != ownerID {
		return Session{}, ErrNotFound
	}

	copied := *session
	copied.Questions = append([]string(nil), session.Questions...)
	copied.Answers = append([]string(nil), session.Answers...)
	return copied, nil
}

func (s *MemoryStore) ListIDs(ctx context.Context, ownerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0)
	for id, session := range s.sessions {
		if session.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MemoryStore) PruneEmpty(ctx context.Context, ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, session := range s.sessions {
		if session.OwnerID == ownerID && len(session.Questions) == 0 && len(session.Answers) == 0 {
			delete(s.sessions, id)
			pruned++
		}
	}
	return pruned, nil
}

var _ Store = (*MemoryStore)(nil)
