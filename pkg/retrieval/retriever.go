// Package retrieval is the Embedding/Retrieval Gateway: it turns a text
// query into relevant passages from the document collection, either
// in-process or through the RAG MCP server.
package retrieval

import (
	"context"
	"strings"
)

// DefaultTopK is the passage count used when a caller passes topK <= 0.
const DefaultTopK = 5

// Passage is a scored chunk returned by a search.
type Passage struct {
	Content     string  `json:"content"`
	Filename    string  `json:"filename,omitempty"`
	ChunkNumber int     `json:"chunk_number"`
	Score       float64 `json:"score"`
}

// Retriever returns the topK most relevant passages for query, collapsed
// into one text block, most relevant first.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) (string, error)
}

// Searcher returns scored passages, most relevant first. A non-empty
// filename restricts the search to one document.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, filename string) ([]Passage, error)
}

// Join concatenates passage contents separated by a blank line.
func Join(passages []Passage) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}
	return strings.Join(texts, "\n\n")
}

func normalizeTopK(topK int) int {
	if topK <= 0 {
		return DefaultTopK
	}
	return topK
}
