package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeClient struct {
	vectors [][]float32
	err     error
	texts   []string
}

func (f *fakeClient) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	f.texts = append(f.texts, texts...)
	return f.vectors, f.err
}

func TestLangchainEmbedder(t *testing.T) {
	client := &fakeClient{vectors: [][]float32{{0.1, 0.2, 0.3}}}
	e, err := NewLangchainEmbedder(client)
	if err != nil {
		t.Fatalf("NewLangchainEmbedder() error = %v", err)
	}

	got, err := e.EmbedText(context.Background(), "Miele WTI 360 benefits")
	if err != nil {
		t.Fatalf("EmbedText() error = %v", err)
	}
	if diff := cmp.Diff([]float32{0.1, 0.2, 0.3}, got); diff != "" {
		t.Errorf("EmbedText() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Miele WTI 360 benefits"}, client.texts); diff != "" {
		t.Errorf("texts sent (-want +got):\n%s", diff)
	}
}

func TestLangchainEmbedderErrors(t *testing.T) {
	e, err := NewLangchainEmbedder(&fakeClient{err: errors.New("unauthorized")})
	if err != nil {
		t.Fatalf("NewLangchainEmbedder() error = %v", err)
	}
	if _, err := e.EmbedText(context.Background(), "q"); err == nil {
		t.Error("expected client error")
	}

	e, err = NewLangchainEmbedder(&fakeClient{vectors: [][]float32{{}}})
	if err != nil {
		t.Fatalf("NewLangchainEmbedder() error = %v", err)
	}
	if _, err := e.EmbedText(context.Background(), "q"); !errors.Is(err, ErrEmptyEmbedding) {
		t.Errorf("error = %v, want ErrEmptyEmbedding", err)
	}
}
