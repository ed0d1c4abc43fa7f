package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/mridul249/legalbot-backend/chat"
	"github.com/mridul249/legalbot-backend/llm"
)

// Server exposes the chat pipeline over HTTP. Authentication is a thin
// boundary: a verified JWT yields the owner id and everything else is the
// auth service's concern.
type Server struct {
	service   *chat.Service
	store     chat.Store
	jwtSecret string
	logger    *log.Logger
	handler   http.Handler
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type askRequest struct {
	Question string        `json:"question"`
	History  []llm.Message `json:"history"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type newChatResponse struct {
	ChatID string `json:"chatId"`
}

type getChatResponse struct {
	Chat    chatLog  `json:"chat"`
	ChatIDs []string `json:"chatIds"`
}

type chatLog struct {
	Question []string `json:"question"`
	Answer   []string `json:"answer"`
}

func New(service *chat.Service, store chat.Store, jwtSecret string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		service:   service,
		store:     store,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /chat", s.handleNewChat)
	mux.HandleFunc("POST /chat/{chatId}", s.handleAsk)
	mux.HandleFunc("GET /chat/{chatId}", s.handleGetChat)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (s *Server) handleNewChat(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.ownerFromRequest(r)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err)
		return
	}

	id, err := s.store.Create(r.Context(), ownerID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("create chat: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, newChatResponse{ChatID: id})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.ownerFromRequest(r)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err)
		return
	}

	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	answer, err := s.service.Ask(r.Context(), r.PathValue("chatId"), ownerID, req.Question, req.History)
	if err != nil && !errors.Is(err, chat.ErrPersistence) {
		s.writeError(w, statusForError(err), err)
		return
	}
	if err != nil {
		// Partial success: the answer exists but the history write failed,
		// so the caller still gets the answer and the divergence stays
		// visible in the log.
		s.logger.Printf("partial success: %v", err)
	}

	s.writeJSON(w, http.StatusOK, askResponse{Answer: answer.Text})
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.ownerFromRequest(r)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err)
		return
	}

	ctx := r.Context()
	session, err := s.store.Get(ctx, r.PathValue("chatId"), ownerID)
	if err != nil {
		s.writeError(w, statusForError(err), err)
		return
	}

	ids, err := s.store.ListIDs(ctx, ownerID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("list chats: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, getChatResponse{
		Chat: chatLog{
			Question: session.Questions,
			Answer:   session.Answers,
		},
		ChatIDs: ids,
	})
}

// statusForError maps the failure taxonomy onto HTTP categories: caller
// mistakes to 400, authorization-shaped misses to 404 so existence does not
// leak, upstream provider failures to 502, the rest to 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, chat.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrNotFound), errors.Is(err, chat.ErrNotOwner):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrEmbedding),
		errors.Is(err, chat.ErrRetrieval),
		errors.Is(err, chat.ErrCompletion):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Printf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}
