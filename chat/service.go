package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mridul249/legalbot-backend/embeddings"
	"github.com/mridul249/legalbot-backend/llm"
	"github.com/mridul249/legalbot-backend/retrieval"
)

const defaultTopK = 10

// Service runs the question pipeline: embed the question, retrieve similar
// passages, assemble the conversation, generate an answer, persist the
// exchange. Each request is strictly linear; concurrent requests only share
// the store, which serializes appends per session.
type Service struct {
	embedder embeddings.Embedder
	engine   retrieval.Engine
	llm      llm.Client
	store    Store
	logger   *log.Logger
	topK     int
}

// Answer is the pipeline result. Persisted is false when the answer was
// produced but the durable history write failed, meaning a later Get will
// not show this exchange.
type Answer struct {
	Text      string
	Persisted bool
}

func NewService(embedder embeddings.Embedder, engine retrieval.Engine, llmClient llm.Client, store Store, topK int, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	return &Service{
		embedder: embedder,
		engine:   engine,
		llm:      llmClient,
		store:    store,
		logger:   logger,
		topK:     topK,
	}
}

// Ask answers one question within the given session. History, when supplied
// by the caller, is forwarded to the completion provider verbatim between
// the context and the new question.
//
// A completion failure aborts the request before anything is written: an
// error placeholder must never enter durable history as if it were a real
// answer. A persistence failure, by contrast, is partial success: the answer
// comes back alongside an ErrPersistence so callers can tell durable history
// has diverged.
func (s *Service) Ask(ctx context.Context, sessionID, ownerID, question string, history []llm.Message) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}
	if err := s.checkConfigured(); err != nil {
		return Answer{}, err
	}

	if err := s.store.VerifyOwner(ctx, sessionID, ownerID); err != nil {
		return Answer{}, err
	}

	vector, err := embeddings.EmbedQuery(ctx, s.embedder, question)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}

	passages, err := s.engine.Search(ctx, vector, s.topK)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	if len(passages) == 0 {
		s.logger.Printf("no legal context found for session %s, answering without passages", sessionID)
	}

	messages := BuildMessages(SystemInstruction, passages, history, question)

	generated, err := s.llm.Generate(ctx, messages)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %w", ErrCompletion, err)
	}
	text := strings.TrimSpace(generated)

	// Once an answer exists the write must run even if the caller has gone
	// away, otherwise a completed answer would be silently dropped.
	persistCtx := context.WithoutCancel(ctx)
	if err := s.store.AppendExchange(persistCtx, sessionID, ownerID, question, text); err != nil {
		if errors.Is(err, ErrNotOwner) || errors.Is(err, ErrNotFound) {
			return Answer{}, err
		}
		s.logger.Printf("history diverged for session %s: answer returned but not persisted: %v", sessionID, err)
		return Answer{Text: text, Persisted: false}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return Answer{Text: text, Persisted: true}, nil
}

func (s *Service) checkConfigured() error {
	if s.embedder == nil {
		return fmt.Errorf("embedder is not configured")
	}
	if s.engine == nil {
		return fmt.Errorf("retrieval engine is not configured")
	}
	if s.llm == nil {
		return fmt.Errorf("llm client is not configured")
	}
	if s.store == nil {
		return fmt.Errorf("session store is not configured")
	}
	return nil
}
