package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TrainingRatings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cf_training_ratings_total",
			Help: "Training observations ingested.",
		},
	)
	TrainingUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cf_training_users",
			Help: "Distinct users in the training set.",
		},
	)
	TrainingItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cf_training_items",
			Help: "Distinct items in the training set.",
		},
	)
	BuildStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cf_build_stage_duration_seconds",
			Help:    "Model build stage duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"}, // bias_fit | residual_index | similarity
	)
	SimilarityEdges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cf_similarity_edges_total",
			Help: "Similarity edges emitted into neighbor sets.",
		},
	)
	SimilarityPairsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cf_similarity_pairs_skipped_total",
			Help: "Co-rating pairs dropped for non-positive similarity.",
		},
	)
	NeighborEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cf_neighbor_evictions_total",
			Help: "Candidates evicted from full top-K neighbor sets.",
		},
	)
	Predictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cf_predictions_total",
			Help: "Rating predictions served.",
		},
	)
	PredictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cf_prediction_duration_seconds",
			Help:    "Single prediction duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 10, 8),
		},
	)
	PredictionCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cf_prediction_cache_events_total",
			Help: "Prediction cache events.",
		},
		[]string{"event"}, // hit | miss | evict
	)
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cf_requests_total",
			Help: "Total HTTP requests by method and path.",
		},
		[]string{"method", "path"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cf_request_duration_seconds",
			Help:    "HTTP request duration in seconds by method and path.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		TrainingRatings, TrainingUsers, TrainingItems,
		BuildStageDuration, SimilarityEdges, SimilarityPairsSkipped,
		NeighborEvictions, Predictions, PredictionDuration,
		PredictionCache, RequestsTotal, RequestDuration,
	)
}

func Handler() http.Handler { return promhttp.Handler() }

func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		RequestsTotal.WithLabelValues(r.Method, path).Inc()
		next.ServeHTTP(w, r)
		RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
