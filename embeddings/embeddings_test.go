package embeddings_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mridul249/legalbot-backend/config"
	"github.com/mridul249/legalbot-backend/embeddings"
)

type stubEmbedder struct {
	vectors [][]float32
	err     error
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors, nil
}

func TestEmbedQuerySingleVector(t *testing.T) {
	embedder := &stubEmbedder{vectors: [][]float32{{0.1, 0.2, 0.3}}}

	vec, err := embeddings.EmbedQuery(context.Background(), embedder, "some question")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedQueryPoolsTokenVectors(t *testing.T) {
	embedder := &stubEmbedder{vectors: [][]float32{
		{1, 2, 3},
		{3, 4, 5},
	}}

	vec, err := embeddings.EmbedQuery(context.Background(), embedder, "two token text")
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 3, 4}, vec)
}

func TestEmbedQueryRejectsEmptyText(t *testing.T) {
	embedder := &stubEmbedder{vectors: [][]float32{{0.1}}}
	_, err := embeddings.EmbedQuery(context.Background(), embedder, "")
	require.Error(t, err)
}

func TestEmbedQueryRejectsNonFiniteComponents(t *testing.T) {
	embedder := &stubEmbedder{vectors: [][]float32{{0.1, float32(math.NaN())}}}
	_, err := embeddings.EmbedQuery(context.Background(), embedder, "question")
	require.Error(t, err)

	embedder = &stubEmbedder{vectors: [][]float32{{float32(math.Inf(1))}}}
	_, err = embeddings.EmbedQuery(context.Background(), embedder, "question")
	require.Error(t, err)
}

func TestEmbedQueryRejectsNoVectors(t *testing.T) {
	embedder := &stubEmbedder{}
	_, err := embeddings.EmbedQuery(context.Background(), embedder, "question")
	require.Error(t, err)
}

func TestNewEmbedderOllama(t *testing.T) {
	cfg := config.Config{
		OllamaHost: "http://localhost:11434",
		Embeddings: config.EmbeddingConfig{
			Provider:  config.ProviderOllama,
			Model:     "nomic-embed-text",
			Dimension: 768,
		},
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	require.NoError(t, err)
	assert.NotNil(t, embedder)
}

func TestNewEmbedderOpenAIRequiresKey(t *testing.T) {
	cfg := config.Config{
		Embeddings: config.EmbeddingConfig{
			Provider:  config.ProviderOpenAI,
			Model:     "text-embedding-ada-002",
			Dimension: 1536,
		},
	}

	_, err := embeddings.NewEmbedder(cfg)
	require.Error(t, err)
}

func TestNewEmbedderUnknownProvider(t *testing.T) {
	cfg := config.Config{
		Embeddings: config.EmbeddingConfig{Provider: "cohere"},
	}

	_, err := embeddings.NewEmbedder(cfg)
	require.Error(t, err)
}
