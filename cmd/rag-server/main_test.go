package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type countFunc func(ctx context.Context) (int64, error)

func (f countFunc) CountDocuments(ctx context.Context) (int64, error) { return f(ctx) }

func TestReportCollection(t *testing.T) {
	tests := []struct {
		name    string
		counter countFunc
		want    []string
	}{
		{
			name:    "ready",
			counter: func(context.Context) (int64, error) { return 42, nil },
			want:    []string{"level=INFO", "Document collection ready", "documents=42"},
		},
		{
			name:    "count fails",
			counter: func(context.Context) (int64, error) { return 0, errors.New("relation does not exist") },
			want:    []string{"level=WARN", "Failed to count documents", "relation does not exist"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			reportCollection(context.Background(), logger, tt.counter, "deepresearch_documents")

			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("log %q missing %q", buf.String(), w)
				}
			}
		})
	}
}
