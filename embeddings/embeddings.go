package embeddings

import (
	"context"
	"fmt"
	"math"

	"github.com/mridul249/legalbot-backend/config"
)

// Embedder converts texts into fixed-dimension vectors. Implementations
// return one vector per input text unless the underlying model produces
// token-level vectors, in which case callers go through EmbedQuery.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	Provider  string
	Model     string
	Dimension int

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

func NewEmbedder(cfg config.Config) (Embedder, error) {
	opts := Options{
		Provider:      cfg.Embeddings.Provider,
		Model:         cfg.Embeddings.Model,
		Dimension:     cfg.Embeddings.Dimension,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
	}

	switch opts.Provider {
	case config.ProviderOllama:
		return NewOllamaEmbedder(opts), nil
	case config.ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIEmbedder(opts), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", opts.Provider)
	}
}

// EmbedQuery embeds a single query text. When the provider hands back more
// than one vector for the text (token-level output), the vectors are reduced
// to one sentence vector by unweighted component-wise mean. The returned
// vector is checked for NaN/Inf components before anything downstream sees it.
func EmbedQuery(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	vectors, err := embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}

	vec := vectors[0]
	if len(vectors) > 1 {
		vec, err = meanPool(vectors)
		if err != nil {
			return nil, err
		}
	}

	for i, component := range vec {
		f := float64(component)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("embedding component %d is not finite", i)
		}
	}

	return vec, nil
}

func meanPool(vectors [][]float32) ([]float32, error) {
	width := len(vectors[0])
	sums := make([]float64, width)
	for _, vec := range vectors {
		if len(vec) != width {
			return nil, fmt.Errorf("cannot pool vectors of differing widths: %d vs %d", width, len(vec))
		}
		for i, component := range vec {
			sums[i] += float64(component)
		}
	}

	pooled := make([]float32, width)
	for i, sum := range sums {
		pooled[i] = float32(sum / float64(len(vectors)))
	}
	return pooled, nil
}
