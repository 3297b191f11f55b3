package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// ADKGateway completes requests with an ADK model, e.g. gemini.NewModel.
// Responses are requested unary and the text parts are concatenated.
type ADKGateway struct {
	model model.LLM
}

func NewADKGateway(m model.LLM) *ADKGateway {
	return &ADKGateway{model: m}
}

func (g *ADKGateway) Complete(ctx context.Context, req Request) (string, error) {
	temperature := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       &temperature,
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	llmReq := &model.LLMRequest{
		Model:    g.model.Name(),
		Contents: []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)},
		Config:   cfg,
	}

	var sb strings.Builder
	received := false
	for resp, err := range g.model.GenerateContent(ctx, llmReq, false) {
		if err != nil {
			return "", fmt.Errorf("adk generation failed: %w", err)
		}
		if resp == nil || resp.Content == nil {
			continue
		}
		received = true
		for _, part := range resp.Content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
	}

	if !received {
		return "", ErrNoCompletion
	}
	return sb.String(), nil
}
