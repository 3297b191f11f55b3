package clients

import (
	"context"
	"fmt"

	"github.com/mikeboe/rag-research-agent/pkg/config"
	"github.com/mikeboe/rag-research-agent/pkg/llm"
)

// NewGateway builds the Language-Model Gateway selected by cfg.LLMProvider.
func NewGateway(ctx context.Context, cfg *config.Config) (llm.Gateway, error) {
	switch cfg.LLMProvider {
	case config.ProviderAzure:
		m, err := AzureOpenAI(AzureOptions{
			APIKey:         cfg.AzureAPIKey,
			Endpoint:       cfg.AzureEndpoint,
			Deployment:     cfg.AzureDeployment,
			APIVersion:     cfg.AzureAPIVersion,
			EmbeddingModel: cfg.AzureEmbeddingModel,
		})
		if err != nil {
			return nil, err
		}
		return llm.NewLangchainGateway(m), nil

	case config.ProviderOpenAI:
		m, err := OpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			return nil, err
		}
		return llm.NewLangchainGateway(m), nil

	case config.ProviderGoogle:
		m, err := GoogleAI(ctx, cfg.GoogleApiKey, ModelType(cfg.GoogleModel))
		if err != nil {
			return nil, err
		}
		return llm.NewLangchainGateway(m), nil

	case config.ProviderAnthropic:
		m, err := AnthropicAI(cfg.AnthropicAPIKey, ModelType(cfg.AnthropicModel))
		if err != nil {
			return nil, err
		}
		return llm.NewLangchainGateway(m), nil

	case config.ProviderADK:
		m, err := GeminiADK(ctx, cfg.GoogleApiKey, ModelType(cfg.GoogleModel))
		if err != nil {
			return nil, err
		}
		return llm.NewADKGateway(m), nil

	default:
		return nil, fmt.Errorf("invalid LLM provider: %s", cfg.LLMProvider)
	}
}
