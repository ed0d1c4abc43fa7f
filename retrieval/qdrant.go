package retrieval

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantEngine queries a Qdrant collection whose points carry the chunk text
// in a "content" payload field.
type QdrantEngine struct {
	client     *qdrant.Client
	collection string
	minScore   float64
}

func NewQdrantEngine(host string, port int, collection string, minScore float64) (*QdrantEngine, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &QdrantEngine{
		client:     client,
		collection: collection,
		minScore:   minScore,
	}, nil
}

func (e *QdrantEngine) Search(ctx context.Context, query []float32, k int) ([]Passage, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	results, err := e.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: e.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayloadInclude("content"),
	})
	if err != nil {
		return nil, fmt.Errorf("query qdrant collection: %w", err)
	}

	passages := make([]Passage, 0, len(results))
	for _, result := range results {
		passages = append(passages, Passage{
			Text:  result.Payload["content"].GetStringValue(),
			Score: float64(result.Score),
		})
	}

	return applyThreshold(passages, e.minScore), nil
}

func (e *QdrantEngine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

var _ Engine = (*QdrantEngine)(nil)
