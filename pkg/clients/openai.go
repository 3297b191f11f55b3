package clients

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

// AzureOptions identifies an Azure OpenAI deployment.
type AzureOptions struct {
	APIKey         string
	Endpoint       string
	Deployment     string
	APIVersion     string
	EmbeddingModel string
}

// AzureOpenAI returns a langchaingo OpenAI client talking to an Azure
// deployment. The same client serves chat completions and embeddings.
func AzureOpenAI(opts AzureOptions) (*openai.LLM, error) {
	llm, err := openai.New(
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithToken(opts.APIKey),
		openai.WithBaseURL(opts.Endpoint),
		openai.WithAPIVersion(opts.APIVersion),
		openai.WithModel(opts.Deployment),
		openai.WithEmbeddingModel(opts.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}
	return llm, nil
}

// OpenAI returns a langchaingo OpenAI client. A non-empty baseURL points it
// at any OpenAI-compatible server.
func OpenAI(apiKey, baseURL, model string) (*openai.LLM, error) {
	opts := []openai.Option{openai.WithModel(model)}
	if apiKey != "" {
		opts = append(opts, openai.WithToken(apiKey))
	} else {
		// langchaingo refuses an empty token; local servers ignore it.
		opts = append(opts, openai.WithToken("unused"))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return llm, nil
}
