package clients

import (
	"context"
	"testing"

	"github.com/mikeboe/rag-research-agent/pkg/config"
	"github.com/mikeboe/rag-research-agent/pkg/llm"
)

func TestNewGatewayProviders(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{
			name: "azure",
			cfg: config.Config{
				LLMProvider:     config.ProviderAzure,
				AzureAPIKey:     "key",
				AzureEndpoint:   "https://example.openai.azure.com",
				AzureDeployment: "gpt-4o",
				AzureAPIVersion: "2024-10-21",
			},
		},
		{
			name: "openai compatible base url",
			cfg: config.Config{
				LLMProvider:   config.ProviderOpenAI,
				OpenAIBaseURL: "http://localhost:11434/v1",
				OpenAIModel:   "llama3",
			},
		},
		{
			name: "anthropic",
			cfg: config.Config{
				LLMProvider:     config.ProviderAnthropic,
				AnthropicAPIKey: "key",
			},
		},
		{
			name:    "unknown",
			cfg:     config.Config{LLMProvider: "bogus"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, err := NewGateway(context.Background(), &tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewGateway() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if _, ok := gw.(*llm.LangchainGateway); !ok {
				t.Errorf("NewGateway() = %T, want *llm.LangchainGateway", gw)
			}
		})
	}
}
