package embeddings

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
)

// LangchainEmbedder embeds text through a langchaingo embedder client, such
// as the Azure OpenAI client built by clients.AzureOpenAI.
type LangchainEmbedder struct {
	embedder embeddings.Embedder
}

func NewLangchainEmbedder(client embeddings.EmbedderClient) (*LangchainEmbedder, error) {
	e, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return &LangchainEmbedder{embedder: e}, nil
}

func (e *LangchainEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(vec) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return vec, nil
}
