package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Metadata is the JSONB payload stored next to every chunk.
type Metadata struct {
	Filename    string `json:"filename"`
	ChunkNumber int    `json:"chunknumber"`
}

// Match is a stored chunk together with its cosine similarity to the query.
type Match struct {
	ID       string
	Content  string
	Metadata Metadata
	Score    float64
}

// PGVectorStore runs similarity queries against one collection table.
type PGVectorStore struct {
	pool      *pgxpool.Pool
	tableName string
}

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-zA-Z0-9_]{0,62}$`)

// isValidTableName validates that a table name contains only safe characters
// to prevent SQL injection attacks
func isValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// NewPGVectorStore creates a new PGVector store
func NewPGVectorStore(pool *pgxpool.Pool, tableName string) (*PGVectorStore, error) {
	if !isValidTableName(tableName) {
		return nil, fmt.Errorf("invalid table name %q: must contain only alphanumeric characters and underscores, start with a lowercase letter or underscore, and be 1-63 characters long", tableName)
	}
	return &PGVectorStore{
		pool:      pool,
		tableName: tableName,
	}, nil
}

// similarityQuery builds the nearest-neighbour query; the caller binds the
// embedding as $1, the limit as $2 and, when filtered, the filename as $3.
func similarityQuery(tableName string, filtered bool) string {
	where := ""
	if filtered {
		where = "WHERE metadata->>'filename' = $3"
	}
	return fmt.Sprintf(`
		SELECT id, content, metadata, 1 - (embedding <=> $1) AS similarity
		FROM %s
		%s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgx.Identifier{tableName}.Sanitize(), where)
}

// SimilaritySearch returns the topK chunks closest to queryEmbedding, most
// similar first. A non-empty filename restricts the search to that document.
func (vs *PGVectorStore) SimilaritySearch(ctx context.Context, queryEmbedding []float32, topK int, filename string) ([]Match, error) {
	args := []any{pgvector.NewVector(queryEmbedding), topK}
	if filename != "" {
		args = append(args, filename)
	}

	rows, err := vs.pool.Query(ctx, similarityQuery(vs.tableName, filename != ""), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute similarity search: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var metadataJSON []byte

		if err := rows.Scan(&m.ID, &m.Content, &metadataJSON, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if m.Metadata, err = decodeMetadata(metadataJSON); err != nil {
			return nil, err
		}

		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return matches, nil
}

// CountDocuments returns the number of chunks stored in the collection.
func (vs *PGVectorStore) CountDocuments(ctx context.Context) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{vs.tableName}.Sanitize())
	if err := vs.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

func decodeMetadata(raw []byte) (Metadata, error) {
	var md Metadata
	if len(raw) == 0 {
		return md, nil
	}
	if err := json.Unmarshal(raw, &md); err != nil {
		return md, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return md, nil
}
