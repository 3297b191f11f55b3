package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mikeboe/rag-research-agent/pkg/llm"
	"github.com/mikeboe/rag-research-agent/pkg/metrics"
	"github.com/mikeboe/rag-research-agent/pkg/retrieval"
)

// step is a node of the research loop.
type step int

const (
	stepGenerateQuery step = iota
	stepRetrieve
	stepSummarize
	stepReflect
	stepFinalize
	stepDone
)

func (s step) String() string {
	switch s {
	case stepGenerateQuery:
		return "generate_query"
	case stepRetrieve:
		return "retrieve"
	case stepSummarize:
		return "summarize"
	case stepReflect:
		return "reflect"
	case stepFinalize:
		return "finalize"
	default:
		return "done"
	}
}

// route decides what follows reflection. The comparison is <=, so a budget
// of maxLoops admits maxLoops+1 retrievals.
func route(s *State, maxLoops int) step {
	if s.LoopCount <= maxLoops {
		return stepRetrieve
	}
	return stepFinalize
}

// Engine runs the query, retrieve, summarize and reflect loop over a
// language model and a retriever.
type Engine struct {
	Config    Config
	LLM       llm.Gateway
	Retriever retrieval.Retriever
	Logger    *slog.Logger

	// OnStateUpdate, when set, receives a copy of the state after every step.
	OnStateUpdate func(state State)
}

func NewEngine(cfg Config, model llm.Gateway, retriever retrieval.Retriever) *Engine {
	return &Engine{
		Config:    cfg,
		LLM:       model,
		Retriever: retriever,
		Logger:    slog.Default(),
	}
}

// Run researches topic with the engine's configured loop budget and source
// disclosure.
func (e *Engine) Run(ctx context.Context, topic string) (string, error) {
	return e.RunResearch(ctx, topic, e.Config.MaxLoops, e.Config.RevealSources)
}

// RunResearch researches topic and returns the finalized artifact. Any
// gateway failure aborts the run; no partial artifact is returned.
func (e *Engine) RunResearch(ctx context.Context, topic string, maxLoops int, revealSources bool) (artifact string, err error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("%w: topic is empty", ErrInvalidRequest)
	}
	if maxLoops < 0 {
		return "", fmt.Errorf("%w: max loops must be >= 0, got %d", ErrInvalidRequest, maxLoops)
	}
	defer func() { metrics.RunFinished(err) }()

	state := newState(topic)
	e.Logger.Info("Starting research loop", "topic", topic, "max_loops", maxLoops, "reveal_sources", revealSources)

	for next := stepGenerateQuery; next != stepDone; {
		current := next
		switch current {
		case stepGenerateQuery:
			err = e.generateQuery(ctx, state)
			next = stepRetrieve
		case stepRetrieve:
			err = e.retrieve(ctx, state)
			next = stepSummarize
		case stepSummarize:
			err = e.summarize(ctx, state)
			next = stepReflect
		case stepReflect:
			err = e.reflect(ctx, state)
			next = route(state, maxLoops)
		case stepFinalize:
			artifact = Finalize(state.Summary, state.SourceRecords, revealSources)
			next = stepDone
		}
		if err != nil {
			e.Logger.Error("Research step failed", "step", current.String(), "loop_count", state.LoopCount, "error", err)
			return "", err
		}
		e.notify(state)
	}

	e.Logger.Info("Research complete", "loop_count", state.LoopCount, "length", len(artifact))
	return artifact, nil
}

func (e *Engine) generateQuery(ctx context.Context, state *State) error {
	content, err := e.complete(ctx, llm.Request{
		System:      queryWriterPrompt(state.Topic),
		User:        queryWriterUserMessage,
		Temperature: 0,
		JSON:        true,
	})
	if err != nil {
		return fmt.Errorf("generate query: %w", err)
	}

	var plan QueryPlan
	if err := decodeJSON(content, &plan); err != nil {
		return fmt.Errorf("generate query: %w", err)
	}
	if plan.Query == nil {
		return fmt.Errorf("generate query: %w: missing \"query\" in %q", ErrMalformedModelResponse, content)
	}

	state.CurrentQuery = *plan.Query
	e.Logger.Info("Generated query", "query", state.CurrentQuery, "aspect", plan.Aspect, "rationale", plan.Rationale)
	return nil
}

func (e *Engine) retrieve(ctx context.Context, state *State) error {
	e.Logger.Info("Executing retrieval", "query", state.CurrentQuery, "loop_count", state.LoopCount)

	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	start := time.Now()
	text, err := e.Retriever.Retrieve(callCtx, state.CurrentQuery, e.Config.TopK)
	metrics.GatewayCall(metrics.GatewayRetrieval, start, err)
	if err != nil {
		return fmt.Errorf("retrieve %q: %w: %w", state.CurrentQuery, ErrGatewayUnavailable, err)
	}

	if text == "" {
		e.Logger.Warn("Retrieval returned no text", "query", state.CurrentQuery)
	}

	state.RetrievedTexts = append(state.RetrievedTexts, text)
	state.SourceRecords = append(state.SourceRecords, text)
	state.LoopCount++
	metrics.Iteration()

	e.Logger.Debug("Retrieval results", "loop_count", state.LoopCount, "size", len(text))
	return nil
}

func (e *Engine) summarize(ctx context.Context, state *State) error {
	content, err := e.complete(ctx, llm.Request{
		System:      summarizerPrompt,
		User:        summarizeUserMessage(state.Summary, state.latestResult(), state.Topic),
		Temperature: 0,
	})
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	state.Summary = content
	e.Logger.Debug("Updated summary", "length", len(content))
	return nil
}

func (e *Engine) reflect(ctx context.Context, state *State) error {
	content, err := e.complete(ctx, llm.Request{
		System:      reflectionPrompt(state.Topic),
		User:        reflectionUserMessage(state.Summary),
		Temperature: 0,
		JSON:        true,
	})
	if err != nil {
		return fmt.Errorf("reflect: %w", err)
	}

	var r Reflection
	if err := decodeJSON(content, &r); err != nil {
		return fmt.Errorf("reflect: %w", err)
	}
	if r.FollowUpQuery == nil {
		return fmt.Errorf("reflect: %w: missing \"follow_up_query\" in %q", ErrMalformedModelResponse, content)
	}

	state.CurrentQuery = *r.FollowUpQuery
	e.Logger.Info("Follow-up query", "query", state.CurrentQuery)
	return nil
}

// complete calls the language model under the per-call timeout.
func (e *Engine) complete(ctx context.Context, req llm.Request) (string, error) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	start := time.Now()
	content, err := e.LLM.Complete(callCtx, req)
	metrics.GatewayCall(metrics.GatewayLLM, start, err)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	return content, nil
}

func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Config.CallTimeout > 0 {
		return context.WithTimeout(ctx, e.Config.CallTimeout)
	}
	return context.WithCancel(ctx)
}

func (e *Engine) notify(state *State) {
	if e.OnStateUpdate != nil {
		e.OnStateUpdate(state.snapshot())
	}
}

// decodeJSON parses a JSON-mode answer. A surrounding ```json fence is
// tolerated for providers without a native JSON mode.
func decodeJSON(content string, v any) error {
	if err := json.Unmarshal([]byte(unfence(content)), v); err != nil {
		return fmt.Errorf("%w: %w (content: %q)", ErrMalformedModelResponse, err, content)
	}
	return nil
}

func unfence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(s)
}
