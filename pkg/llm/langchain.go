package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// LangchainGateway completes requests with any langchaingo model.
type LangchainGateway struct {
	model llms.Model
}

func NewLangchainGateway(model llms.Model) *LangchainGateway {
	return &LangchainGateway{model: model}
}

func (g *LangchainGateway) Complete(ctx context.Context, req Request) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.User),
	}

	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := g.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("llm generation failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoCompletion
	}

	return resp.Choices[0].Content, nil
}
