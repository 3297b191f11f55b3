// Package embeddings turns query text into vectors for similarity search.
package embeddings

import (
	"context"
	"errors"
)

// ErrEmptyEmbedding is returned when a provider answers with no vector.
var ErrEmptyEmbedding = errors.New("empty embedding returned")

// Embedder generates the embedding of a single text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}
