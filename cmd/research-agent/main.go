package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mikeboe/rag-research-agent/pkg/clients"
	"github.com/mikeboe/rag-research-agent/pkg/config"
	"github.com/mikeboe/rag-research-agent/pkg/research"
	"github.com/mikeboe/rag-research-agent/pkg/retrieval"
)

var (
	topic         string
	maxLoops      int
	revealSources bool
	mcpURL        string
	provider      string
)

func main() {
	cfg := config.Load()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	// Logs go to stderr so stdout carries only the artifact.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	rootCmd := &cobra.Command{
		Use:   "research-agent",
		Short: "Research a topic against a document knowledge base",
		Long: `research-agent iterates a query, retrieve, summarize and reflect loop against a RAG MCP server
and prints a markdown summary of what it found.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("topic") {
				topic = promptTopic(os.Stdin, os.Stderr)
			}
			if topic == "" {
				return fmt.Errorf("topic cannot be empty")
			}

			cfg.LLMProvider = strings.ToLower(provider)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			model, err := clients.NewGateway(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to create language model gateway: %w", err)
			}

			researchCfg := research.DefaultConfig()
			researchCfg.MaxLoops = maxLoops
			researchCfg.RevealSources = revealSources
			researchCfg.TopK = cfg.TopK
			researchCfg.CallTimeout = cfg.GatewayTimeout

			retriever := retrieval.NewMCPRetriever(mcpURL, retrieval.WithLogger(slog.Default()))
			engine := research.NewEngine(researchCfg, model, retriever)

			slog.Info("Starting research", "topic", topic, "provider", cfg.LLMProvider, "mcp_url", mcpURL)

			artifact, err := engine.Run(ctx, topic)
			if err != nil {
				return err
			}

			fmt.Println(artifact)
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&topic, "topic", "t", "", "The research topic")
	rootCmd.Flags().IntVar(&maxLoops, "max-loops", cfg.MaxResearchLoops, "Loop budget; the run performs max-loops+1 retrievals")
	rootCmd.Flags().BoolVar(&revealSources, "reveal-sources", cfg.PrintSourcesInSummary, "Append the retrieved source texts to the summary")
	rootCmd.Flags().StringVar(&mcpURL, "mcp-url", cfg.MCPServerURL, "RAG MCP server endpoint")
	rootCmd.Flags().StringVar(&provider, "provider", cfg.LLMProvider, "Language model provider (azure, openai, google, anthropic, adk)")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Research failed", "error", err)
		os.Exit(1)
	}
}

// promptTopic asks for a topic on out, which is kept apart from the
// artifact on stdout.
func promptTopic(in io.Reader, out io.Writer) string {
	fmt.Fprint(out, "Enter research topic: ")
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(input)
}
