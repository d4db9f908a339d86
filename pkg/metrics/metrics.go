package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream stages observed by RecordUpstream.
const (
	StageGraph    = "graph"
	StageEmbed    = "embed"
	StageVector   = "vector"
	StageSummary  = "summary"
	StageDescribe = "describe"
)

var (
	// API Metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_requests_total",
			Help: "Total number of recommendation API requests",
		},
		[]string{"endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommender_request_duration_seconds",
			Help:    "Duration of recommendation API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Upstream Metrics
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "recommender_upstream_duration_seconds",
			Help: "Duration of calls to graph, vector, embedding and generation backends",
			// Generation calls routinely take several seconds.
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_upstream_errors_total",
			Help: "Total number of failed upstream calls",
		},
		[]string{"stage"},
	)

	GeneratedTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_generated_tokens_total",
			Help: "Total number of tokens consumed by generation calls",
		},
		[]string{"model", "kind"}, // kind: prompt, completion
	)
)

// RecordRequest records one served API request
func RecordRequest(endpoint string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordUpstream records one upstream call of the given stage
func RecordUpstream(stage string, duration time.Duration, err error) {
	UpstreamDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		UpstreamErrors.WithLabelValues(stage).Inc()
	}
}

// RecordTokens adds prompt and completion token counts for a model
func RecordTokens(model string, promptTokens, completionTokens int) {
	if promptTokens > 0 {
		GeneratedTokens.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		GeneratedTokens.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
}
