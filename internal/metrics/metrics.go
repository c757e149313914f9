// Package metrics holds the Prometheus collectors shared across the pipeline
// and the HTTP surface.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trustie"

var (
	// BackendCalls counts outbound backend calls.
	// Labels: provider, purpose (extract, retrieve, adjudicate, answer, rephrase), outcome (ok, error)
	BackendCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "calls_total",
		Help:      "Outbound backend calls by provider, purpose and outcome",
	}, []string{"provider", "purpose", "outcome"})

	// BackendLatency measures backend call duration in seconds.
	BackendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "latency_seconds",
		Help:      "Backend call latency in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider", "purpose"})

	// Verdicts counts adjudicated claims by final status.
	Verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "verdicts_total",
		Help:      "Claims by final status",
	}, []string{"status"})

	// MisconceptionHits counts claims resolved by the misconception table.
	MisconceptionHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "misconception_hits_total",
		Help:      "Claims short-circuited by a known misconception",
	}, []string{"id"})

	// EvidenceCache counts evidence cache lookups.
	// Labels: result (hit, miss)
	EvidenceCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "evidence",
		Name:      "cache_lookups_total",
		Help:      "Evidence cache lookups by result",
	}, []string{"result"})

	// HTTPRequests counts API requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	// HTTPDuration measures API request duration in seconds.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 240},
	}, []string{"route", "method"})
)

// RecordBackendCall records the outcome and latency of one backend call
func RecordBackendCall(provider, purpose string, err error, seconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	BackendCalls.WithLabelValues(provider, purpose, outcome).Inc()
	BackendLatency.WithLabelValues(provider, purpose).Observe(seconds)
}

// RecordVerdict counts one claim status
func RecordVerdict(status string) {
	Verdicts.WithLabelValues(status).Inc()
}

// RecordMisconception counts one misconception table hit
func RecordMisconception(id string) {
	MisconceptionHits.WithLabelValues(id).Inc()
}

// RecordCacheLookup counts an evidence cache hit or miss
func RecordCacheLookup(hit bool) {
	if hit {
		EvidenceCache.WithLabelValues("hit").Inc()
		return
	}
	EvidenceCache.WithLabelValues("miss").Inc()
}

// RecordHTTPRequest records one API request. Route is the matched pattern,
// never the raw path.
func RecordHTTPRequest(route, method string, status int, seconds float64) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route, method).Observe(seconds)
}
