package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	gradingRunsTotal    *prometheus.CounterVec
	gradingDurationSecs *prometheus.HistogramVec
	notificationsTotal  *prometheus.CounterVec
	sseClientsActive    prometheus.Gauge
	tutorTurnsTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the portal.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		gradingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_grading_runs_total",
			Help: "Grading pipeline runs by submission mode and outcome.",
		}, []string{"mode", "outcome"})

		gradingDurationSecs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_grading_duration_seconds",
			Help:    "End-to-end duration of successful grading runs.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"mode"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_notifications_published_total",
			Help: "Notifications published by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portal_sse_clients_active",
			Help: "Currently connected SSE notification clients.",
		})

		tutorTurnsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_tutor_turns_total",
			Help: "Tutor chat turns by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, gradingRunsTotal,
			gradingDurationSecs, notificationsTotal, sseClientsActive, tutorTurnsTotal)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// GradingRuns exposes the grading-run counter.
func GradingRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingRunsTotal
}

// GradingDuration exposes the grading duration histogram.
func GradingDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return gradingDurationSecs
}

// NotificationsPublished exposes the notification counter.
func NotificationsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// SSEClientsActive exposes the connected SSE client gauge.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

// TutorTurns exposes the tutor chat turn counter.
func TutorTurns() *prometheus.CounterVec {
	RegisterMetrics()
	return tutorTurnsTotal
}
