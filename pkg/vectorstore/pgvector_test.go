package vectorstore

import (
	"strings"
	"testing"
)

func TestIsValidTableName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Valid standard", "embeddings", true},
		{"Valid with underscore", "deepresearch_documents", true},
		{"Valid with numbers", "collection123", true},
		{"Valid short", "a", true},
		{"Valid max length", "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_", true}, // 63 chars
		{"Invalid start with number", "1collection", false},
		{"Invalid dash", "deepresearch-documents", false},
		{"Invalid space", "collection name", false},
		{"Invalid SQL injection", "users; DROP TABLE embeddings", false},
		{"Invalid empty", "", false},
		{"Invalid too long", "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789__", false}, // 64 chars
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isValidTableName(tt.input); got != tt.expected {
				t.Errorf("isValidTableName(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewPGVectorStoreRejectsBadName(t *testing.T) {
	if _, err := NewPGVectorStore(nil, "bad-name"); err == nil {
		t.Error("expected error for invalid table name")
	}
	if _, err := NewPGVectorStore(nil, "docs"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSimilarityQuery(t *testing.T) {
	unfiltered := similarityQuery("docs", false)
	if strings.Contains(unfiltered, "WHERE") {
		t.Errorf("unfiltered query has a WHERE clause:\n%s", unfiltered)
	}
	if !strings.Contains(unfiltered, `FROM "docs"`) || !strings.Contains(unfiltered, "LIMIT $2") {
		t.Errorf("unexpected query:\n%s", unfiltered)
	}

	filtered := similarityQuery("docs", true)
	if !strings.Contains(filtered, "WHERE metadata->>'filename' = $3") {
		t.Errorf("filtered query missing filename clause:\n%s", filtered)
	}
	if !strings.Contains(filtered, "ORDER BY embedding <=> $1") {
		t.Errorf("filtered query not ordered by distance:\n%s", filtered)
	}
}

func TestDecodeMetadata(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Metadata
		wantErr bool
	}{
		{"empty", "", Metadata{}, false},
		{"full", `{"filename":"manual.md","chunknumber":4}`, Metadata{Filename: "manual.md", ChunkNumber: 4}, false},
		{"extra keys ignored", `{"filename":"a.txt","chunknumber":0,"lang":"de"}`, Metadata{Filename: "a.txt"}, false},
		{"invalid", `{"filename":`, Metadata{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeMetadata([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeMetadata() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("decodeMetadata() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
