package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderAzure     = "azure"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderAnthropic = "anthropic"
	ProviderADK       = "adk"
)

// Config holds the research agent settings.
type Config struct {
	LLMProvider string

	AzureAPIKey         string
	AzureEndpoint       string
	AzureDeployment     string
	AzureAPIVersion     string
	AzureEmbeddingModel string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	GoogleApiKey string
	GoogleModel  string

	AnthropicAPIKey string
	AnthropicModel  string

	MaxResearchLoops      int
	MCPServerURL          string
	PrintSourcesInSummary bool
	Debug                 bool
	TopK                  int
	GatewayTimeout        time.Duration
}

// Load reads the agent configuration from the environment. A .env file in
// the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		LLMProvider: strings.ToLower(getEnv("LLM_PROVIDER", ProviderAzure)),

		AzureAPIKey:         getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureEndpoint:       getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureDeployment:     getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", ""),
		AzureAPIVersion:     getEnv("AZURE_OPENAI_API_VERSION", "2024-10-21"),
		AzureEmbeddingModel: getEnv("AZURE_OPENAI_EMBEDDING_MODEL", "text-embedding-3-large"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),

		GoogleApiKey: getEnv("GOOGLE_API_KEY", ""),
		GoogleModel:  getEnv("GOOGLE_MODEL", "gemini-3-flash-preview"),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),

		MaxResearchLoops:      getEnvAsInt("MAX_RESEARCH_LOOPS", 3),
		MCPServerURL:          getEnv("MCP_SERVER_URL", "http://localhost:8000/mcp"),
		PrintSourcesInSummary: getEnvAsBool("PRINT_SOURCES_IN_SUMMARY", false),
		Debug:                 getEnvAsBool("DEBUG", false),
		TopK:                  getEnvAsInt("RAG_TOP_K", 5),
		GatewayTimeout:        getEnvAsDuration("GATEWAY_TIMEOUT", 60*time.Second),
	}
}

// Validate reports missing credentials for the selected provider and
// out-of-range loop settings.
func (c *Config) Validate() error {
	if c.MaxResearchLoops < 0 {
		return fmt.Errorf("MAX_RESEARCH_LOOPS must be >= 0, got %d", c.MaxResearchLoops)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("RAG_TOP_K must be > 0, got %d", c.TopK)
	}

	switch c.LLMProvider {
	case ProviderAzure:
		if c.AzureAPIKey == "" || c.AzureEndpoint == "" || c.AzureDeployment == "" {
			return fmt.Errorf("azure provider requires AZURE_OPENAI_API_KEY, AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_DEPLOYMENT_NAME")
		}
	case ProviderOpenAI:
		// A custom base URL (e.g. a local server) may not need a key.
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("openai provider requires OPENAI_API_KEY or OPENAI_BASE_URL")
		}
	case ProviderGoogle, ProviderADK:
		if c.GoogleApiKey == "" {
			return fmt.Errorf("%s provider requires GOOGLE_API_KEY", c.LLMProvider)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool accepts true/1/yes in any case, like the Python agent did.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch valueStr {
	case "":
		return defaultValue
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
