package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskchunker_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskchunker_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	ConversationsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskchunker_conversations_started_total",
			Help: "Total conversations started",
		},
	)

	Completions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskchunker_completions_total",
			Help: "Total completion backend calls",
		},
		[]string{"outcome"}, // "ok", "backend_error" or "parse_error"
	)

	CompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskchunker_completion_duration_seconds",
			Help:    "Completion backend call duration",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	ChunksCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskchunker_chunks_created_total",
			Help: "Total task decompositions persisted",
		},
		[]string{"mode"}, // "task_id" or "title"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskchunker_rate_limit_hits_total",
			Help: "Total rate limited requests",
		},
		[]string{"endpoint"},
	)
)
