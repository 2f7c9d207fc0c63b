package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Agent, model, tool, retrieval and ingestion metrics.
var (
	ModelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Total number of chat model invocations",
		},
		[]string{"model", "status"},
	)

	ModelRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Chat model invocation duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"model"},
	)

	ModelTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_tokens_total",
			Help:      "Total chat model tokens consumed",
		},
		[]string{"model", "type"}, // "prompt" / "completion"
	)

	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total tool dispatches by outcome",
		},
		[]string{"tool", "status"}, // "ok" / "error" / "invalid_args" / "unknown"
	)

	ToolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Tool execution duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"tool"},
	)

	AgentTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_turns_total",
			Help:      "Agent turns by outcome",
		},
		[]string{"outcome"}, // "answered" / "declined" / "exhausted" / "model_error"
	)

	RetrievalSources = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_sources",
			Help:      "Number of knowledge passages included per turn",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
	)

	IngestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_documents_total",
			Help:      "Ingested documents by outcome",
		},
		[]string{"status"}, // "ok" / "error"
	)
)

var agentOnce sync.Once

// RegisterAgentMetrics registers model, tool, turn, retrieval and ingestion
// collectors with the default registry. Safe to call from every subcommand.
func RegisterAgentMetrics() {
	mustRegisterOnce(&agentOnce,
		ModelRequestsTotal,
		ModelRequestDuration,
		ModelTokensTotal,
		ToolCallsTotal,
		ToolCallDuration,
		AgentTurnsTotal,
		RetrievalSources,
		IngestDocumentsTotal,
	)
}
