package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/mikeboe/rag-research-agent/pkg/clients"
	"github.com/mikeboe/rag-research-agent/pkg/config"
	"github.com/mikeboe/rag-research-agent/pkg/database"
	"github.com/mikeboe/rag-research-agent/pkg/embeddings"
	"github.com/mikeboe/rag-research-agent/pkg/ragserver"
	"github.com/mikeboe/rag-research-agent/pkg/research"
	"github.com/mikeboe/rag-research-agent/pkg/retrieval"
	"github.com/mikeboe/rag-research-agent/pkg/server"
	"github.com/mikeboe/rag-research-agent/pkg/vectorstore"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	ragCfg := config.LoadRagConfig()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := ragCfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(ctx, ragCfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureCollection(ctx, ragCfg.CollectionName, ragCfg.EmbeddingDimensions); err != nil {
		return err
	}
	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	embedder, err := newEmbedder(ctx, cfg, ragCfg)
	if err != nil {
		return err
	}

	store, err := vectorstore.NewPGVectorStore(db.Pool, ragCfg.CollectionName)
	if err != nil {
		return err
	}
	reportCollection(ctx, slog.Default(), store, ragCfg.CollectionName)

	retriever := retrieval.NewStoreRetriever(embedder, store)
	mcpServer := ragserver.New(retriever, slog.Default())

	// The research API needs a language model; without credentials only the
	// MCP endpoint is served.
	var svc *server.Service
	if err := cfg.Validate(); err != nil {
		slog.Warn("Research API disabled", "reason", err)
	} else {
		model, err := clients.NewGateway(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to create language model gateway: %w", err)
		}
		researchCfg := research.DefaultConfig()
		researchCfg.MaxLoops = cfg.MaxResearchLoops
		researchCfg.RevealSources = cfg.PrintSourcesInSummary
		researchCfg.TopK = cfg.TopK
		researchCfg.CallTimeout = cfg.GatewayTimeout
		svc = server.NewService(ctx, server.NewPostgresRunStore(db), model, retriever, researchCfg)
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Mcp-Session-Id", "Mcp-Protocol-Version"},
		ExposeHeaders: []string{"Content-Length", "Mcp-Session-Id"},
	}))
	server.NewHandler(svc, ragserver.Handler(mcpServer)).RegisterRoutes(r)

	httpServer := &http.Server{
		Addr:              ":" + ragCfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting", "port", ragCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		slog.Info("Shutting down")
		err := httpServer.Shutdown(shutdownCtx)
		if svc != nil {
			svc.Wait()
		}
		return err
	})

	return g.Wait()
}

func newEmbedder(ctx context.Context, cfg *config.Config, ragCfg *config.RagConfig) (embeddings.Embedder, error) {
	switch ragCfg.EmbeddingProvider {
	case config.EmbeddingAzure:
		client, err := clients.AzureOpenAI(clients.AzureOptions{
			APIKey:         cfg.AzureAPIKey,
			Endpoint:       cfg.AzureEndpoint,
			Deployment:     cfg.AzureDeployment,
			APIVersion:     cfg.AzureAPIVersion,
			EmbeddingModel: cfg.AzureEmbeddingModel,
		})
		if err != nil {
			return nil, err
		}
		return embeddings.NewLangchainEmbedder(client)
	default:
		return embeddings.NewGoogleEmbedder(ctx, ragCfg.EmbeddingModel, cfg.GoogleApiKey, ragCfg.EmbeddingDimensions)
	}
}

type documentCounter interface {
	CountDocuments(ctx context.Context) (int64, error)
}

func reportCollection(ctx context.Context, logger *slog.Logger, counter documentCounter, collection string) {
	count, err := counter.CountDocuments(ctx)
	if err != nil {
		logger.Warn("Failed to count documents", "collection", collection, "error", err)
		return
	}
	logger.Info("Document collection ready", "collection", collection, "documents", count)
}
