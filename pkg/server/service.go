package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mikeboe/rag-research-agent/pkg/llm"
	"github.com/mikeboe/rag-research-agent/pkg/research"
	"github.com/mikeboe/rag-research-agent/pkg/retrieval"
)

// ListLimit bounds the runs returned by ListRuns.
const ListLimit = 50

// ErrInvalidRun rejects a create request before a run is stored.
var ErrInvalidRun = errors.New("invalid research run")

type Service struct {
	Store     RunStore
	LLM       llm.Gateway
	Retriever retrieval.Retriever
	Cfg       research.Config
	Logger    *slog.Logger

	ctx context.Context
	wg  sync.WaitGroup
}

// NewService returns a service whose background runs are bound to ctx.
func NewService(ctx context.Context, store RunStore, model llm.Gateway, retriever retrieval.Retriever, cfg research.Config) *Service {
	return &Service{
		Store:     store,
		LLM:       model,
		Retriever: retriever,
		Cfg:       cfg,
		Logger:    slog.Default(),
		ctx:       ctx,
	}
}

type CreateRunRequest struct {
	Topic         string `json:"topic"`
	MaxLoops      *int   `json:"max_loops,omitempty"`
	RevealSources *bool  `json:"reveal_sources,omitempty"`
}

// CreateRun stores a pending run and starts it in the background.
func (s *Service) CreateRun(ctx context.Context, req CreateRunRequest) (*Run, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidRun)
	}

	maxLoops := s.Cfg.MaxLoops
	if req.MaxLoops != nil {
		maxLoops = *req.MaxLoops
	}
	if maxLoops < 0 {
		return nil, fmt.Errorf("%w: max_loops must be >= 0", ErrInvalidRun)
	}

	revealSources := s.Cfg.RevealSources
	if req.RevealSources != nil {
		revealSources = *req.RevealSources
	}

	run, err := s.Store.CreateRun(ctx, topic, maxLoops, revealSources)
	if err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runWorker(run.ID, topic, maxLoops, revealSources)
	}()

	return run, nil
}

func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	return s.Store.GetRun(ctx, id)
}

func (s *Service) ListRuns(ctx context.Context) ([]Run, error) {
	return s.Store.ListRuns(ctx, ListLimit)
}

func (s *Service) GetRunLogs(ctx context.Context, id uuid.UUID) ([]LogEntry, error) {
	if _, err := s.Store.GetRun(ctx, id); err != nil {
		return nil, err
	}
	return s.Store.ListLogs(ctx, id)
}

// Wait blocks until every background run has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) runWorker(runID uuid.UUID, topic string, maxLoops int, revealSources bool) {
	ctx := s.ctx
	runLogger := slog.New(NewDBLogHandler(s.Store, runID, s.Logger.Handler())).With("run_id", runID.String())

	if err := s.Store.SetStatus(ctx, runID, StatusRunning); err != nil {
		runLogger.Error("Failed to mark run as running", "error", err)
	}

	engine := research.NewEngine(s.Cfg, s.LLM, s.Retriever)
	engine.Logger = runLogger
	engine.OnStateUpdate = func(state research.State) {
		if err := s.Store.SaveState(context.WithoutCancel(ctx), runID, state); err != nil {
			runLogger.Error("Failed to save state", "error", err)
		}
	}

	artifact, err := engine.RunResearch(ctx, topic, maxLoops, revealSources)
	if err != nil {
		s.failRun(ctx, runLogger, runID, err)
		return
	}

	if err := s.Store.CompleteRun(context.WithoutCancel(ctx), runID, artifact); err != nil {
		runLogger.Error("Failed to save artifact", "error", err)
	}
}

func (s *Service) failRun(ctx context.Context, logger *slog.Logger, runID uuid.UUID, cause error) {
	logger.Error("Research failed", "error", cause)
	if err := s.Store.FailRun(context.WithoutCancel(ctx), runID, cause.Error()); err != nil {
		logger.Error("Failed to mark run as failed", "error", err)
	}
}
