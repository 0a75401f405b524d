package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medassist_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medassist_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "medassist_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	analysisAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medassist_ai_analysis_attempts_total",
			Help: "Symptom analysis attempts per provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	recommendationSources = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medassist_recommendation_source_results_total",
			Help: "Recommendation sub-query results per source and status",
		},
		[]string{"source", "status"},
	)

	imageRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medassist_image_rejections_total",
			Help: "Uploaded images rejected before analysis",
		},
		[]string{"reason"},
	)

	sessionsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medassist_chat_sessions_evicted_total",
			Help: "Chat sessions removed by the janitor",
		},
	)
)

// PrometheusHandler serves the Prometheus exposition format
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest records a served request
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackInFlight increments the in-flight gauge and returns its decrement
func TrackInFlight() func() {
	httpRequestsInFlight.Inc()
	return httpRequestsInFlight.Dec
}

// RecordAnalysisAttempt counts one dispatcher attempt
func RecordAnalysisAttempt(provider, outcome string) {
	analysisAttempts.WithLabelValues(provider, outcome).Inc()
}

// RecordRecommendationSource counts one aggregator sub-query result
func RecordRecommendationSource(source, status string) {
	recommendationSources.WithLabelValues(source, status).Inc()
}

// RecordImageRejection counts an upload rejected by validation
func RecordImageRejection(reason string) {
	imageRejections.WithLabelValues(reason).Inc()
}

// RecordSessionsEvicted counts sessions removed by the janitor
func RecordSessionsEvicted(n int) {
	sessionsEvicted.Add(float64(n))
}
