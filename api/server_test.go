package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mridul249/legalbot-backend/api"
	"github.com/mridul249/legalbot-backend/chat"
	"github.com/mridul249/legalbot-backend/llm"
	"github.com/mridul249/legalbot-backend/retrieval"
)

const testSecret = "test-secret"

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return [][]float32{{0.1, 0.2}}, nil
}

type stubEngine struct{}

func (stubEngine) Search(ctx context.Context, query []float32, k int) ([]retrieval.Passage, error) {
	return []retrieval.Passage{{Text: "refund clause", Score: 0.9}}, nil
}

type stubLLM struct {
	answer string
	err    error
}

func (s stubLLM) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func newTestServer(t *testing.T, generator llm.Client) (*api.Server, chat.Store) {
	t.Helper()
	store := chat.NewMemoryStore()
	logger := log.New(io.Discard, "", 0)
	service := chat.NewService(stubEmbedder{}, stubEngine{}, generator, store, 3, logger)
	return api.New(service, store, testSecret, logger), store
}

func signToken(t *testing.T, ownerID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": ownerID}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, server http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestAskRequiresAuth(t *testing.T) {
	server, _ := newTestServer(t, stubLLM{answer: "ok"})

	rec := doJSON(t, server, http.MethodPost, "/chat/some-id", "", map[string]string{"question": "q"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAskRejectsBadToken(t *testing.T) {
	server, _ := newTestServer(t, stubLLM{answer: "ok"})

	req := httptest.NewRequest(http.MethodPost, "/chat/some-id", bytes.NewReader([]byte(`{"question":"q"}`)))
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatRoundTrip(t *testing.T) {
	server, _ := newTestServer(t, stubLLM{answer: "You have 14 days to request a refund."})
	token := signToken(t, "user-a")

	rec := doJSON(t, server, http.MethodPost, "/chat", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		ChatID string `json:"chatId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ChatID)

	rec = doJSON(t, server, http.MethodPost, "/chat/"+created.ChatID, token,
		map[string]string{"question": "What is a consumer's right to refund?"})
	require.Equal(t, http.StatusOK, rec.Code)
	var asked struct {
		Answer string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &asked))
	assert.Equal(t, "You have 14 days to request a refund.", asked.Answer)

	rec = doJSON(t, server, http.MethodGet, "/chat/"+created.ChatID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched struct {
		Chat struct {
			Question []string `json:"question"`
			Answer   []string `json:"answer"`
		} `json:"chat"`
		ChatIDs []string `json:"chatIds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, []string{"What is a consumer's right to refund?"}, fetched.Chat.Question)
	assert.Equal(t, []string{"You have 14 days to request a refund."}, fetched.Chat.Answer)
	assert.Contains(t, fetched.ChatIDs, created.ChatID)
}

func TestAskEmptyQuestionIsBadRequest(t *testing.T) {
	server, store := newTestServer(t, stubLLM{answer: "unused"})
	token := signToken(t, "user-a")

	id, err := store.Create(context.Background(), "user-a")
	require.NoError(t, err)

	rec := doJSON(t, server, http.MethodPost, "/chat/"+id, token, map[string]string{"question": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	session, err := store.Get(context.Background(), id, "user-a")
	require.NoError(t, err)
	assert.Empty(t, session.Questions)
}

func TestGetUnknownChatIsNotFound(t *testing.T) {
	server, _ := newTestServer(t, stubLLM{answer: "unused"})
	token := signToken(t, "user-a")

	rec := doJSON(t, server, http.MethodGet, "/chat/00000000-0000-0000-0000-000000000000", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestForeignChatLooksAbsent(t *testing.T) {
	server, store := newTestServer(t, stubLLM{answer: "unused"})

	id, err := store.Create(context.Background(), "user-a")
	require.NoError(t, err)

	tokenB := signToken(t, "user-b")

	rec := doJSON(t, server, http.MethodGet, "/chat/"+id, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/chat/"+id, tokenB, map[string]string{"question": "q"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompletionFailureIsBadGateway(t *testing.T) {
	server, store := newTestServer(t, stubLLM{err: errors.New("deployment down")})
	token := signToken(t, "user-a")

	id, err := store.Create(context.Background(), "user-a")
	require.NoError(t, err)

	rec := doJSON(t, server, http.MethodPost, "/chat/"+id, token, map[string]string{"question": "q"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)

	session, err := store.Get(context.Background(), id, "user-a")
	require.NoError(t, err)
	assert.Empty(t, session.Questions, "a failed completion must leave no trace in history")
}

type brokenStore struct {
	chat.Store
}

func (brokenStore) AppendExchange(ctx context.Context, sessionID, ownerID, question, answer string) error {
	return errors.New("disk full")
}

func TestPersistenceFailureStillReturnsAnswer(t *testing.T) {
	store := brokenStore{Store: chat.NewMemoryStore()}
	logger := log.New(io.Discard, "", 0)
	service := chat.NewService(stubEmbedder{}, stubEngine{}, stubLLM{answer: "the answer"}, store, 3, logger)
	server := api.New(service, store, testSecret, logger)
	token := signToken(t, "user-a")

	id, err := store.Create(context.Background(), "user-a")
	require.NoError(t, err)

	rec := doJSON(t, server, http.MethodPost, "/chat/"+id, token, map[string]string{"question": "q"})
	require.Equal(t, http.StatusOK, rec.Code, "a failed history write is partial success, not an error")

	var resp struct {
		Answer string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "the answer", resp.Answer)
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t, stubLLM{answer: "ok"})

	rec := doJSON(t, server, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
