// Package metrics holds the Prometheus collectors of the research agent and
// the RAG server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway label values.
const (
	GatewayLLM       = "llm"
	GatewayRetrieval = "retrieval"
)

var (
	runCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_runs_total",
			Help: "Total number of research runs by outcome",
		},
		[]string{"outcome"},
	)

	iterationCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_iterations_total",
			Help: "Total number of completed retrieval iterations",
		},
	)

	gatewayCallCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_gateway_calls_total",
			Help: "Total number of gateway calls by gateway and outcome",
		},
		[]string{"gateway", "outcome"},
	)

	gatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_gateway_call_duration_seconds",
			Help:    "Latency of gateway calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"gateway"},
	)

	ragToolCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_tool_calls_total",
			Help: "Total number of RAG MCP tool calls by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RunFinished records the end of a research run.
func RunFinished(err error) {
	runCounter.WithLabelValues(outcome(err)).Inc()
}

// Iteration records one completed retrieval step.
func Iteration() {
	iterationCounter.Inc()
}

// GatewayCall records one gateway call that started at start.
func GatewayCall(gateway string, start time.Time, err error) {
	gatewayCallCounter.WithLabelValues(gateway, outcome(err)).Inc()
	gatewayCallDuration.WithLabelValues(gateway).Observe(time.Since(start).Seconds())
}

// RagToolCall records one MCP tool invocation on the RAG server.
func RagToolCall(tool string, err error) {
	ragToolCounter.WithLabelValues(tool, outcome(err)).Inc()
}
