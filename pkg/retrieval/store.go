package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mikeboe/rag-research-agent/pkg/embeddings"
	"github.com/mikeboe/rag-research-agent/pkg/vectorstore"
)

// VectorSearcher is the part of the vector store used for retrieval.
type VectorSearcher interface {
	SimilaritySearch(ctx context.Context, queryEmbedding []float32, topK int, filename string) ([]vectorstore.Match, error)
}

// StoreRetriever embeds the query and searches the vector store directly.
type StoreRetriever struct {
	embedder embeddings.Embedder
	store    VectorSearcher
	logger   *slog.Logger
}

func NewStoreRetriever(embedder embeddings.Embedder, store VectorSearcher) *StoreRetriever {
	return &StoreRetriever{
		embedder: embedder,
		store:    store,
		logger:   slog.Default(),
	}
}

func (r *StoreRetriever) Search(ctx context.Context, query string, topK int, filename string) ([]Passage, error) {
	topK = normalizeTopK(topK)

	queryEmbedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	matches, err := r.store.SimilaritySearch(ctx, queryEmbedding, topK, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	passages := make([]Passage, len(matches))
	for i, m := range matches {
		passages[i] = Passage{
			Content:     m.Content,
			Filename:    m.Metadata.Filename,
			ChunkNumber: m.Metadata.ChunkNumber,
			Score:       m.Score,
		}
	}

	r.logger.Debug("Search results", "query", query, "topK", topK, "count", len(passages))
	return passages, nil
}

func (r *StoreRetriever) Retrieve(ctx context.Context, query string, topK int) (string, error) {
	passages, err := r.Search(ctx, query, topK, "")
	if err != nil {
		return "", err
	}
	return Join(passages), nil
}
