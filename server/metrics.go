package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serverMetrics holds the collectors of a single server. Every server gets its
// own registry so that several servers can run in one test binary.
type serverMetrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	signs        *prometheus.CounterVec
	signDuration prometheus.Histogram
	keyRequests  prometheus.Counter
}

func newServerMetrics() *serverMetrics {
	m := &serverMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vts_requests_total",
			Help: "Total number of HTTP requests handled.",
		}, []string{"route", "status"}),
		signs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vts_sign_total",
			Help: "Total number of sign requests by result.",
		}, []string{"result"}), // result: ok|bad_request|rate_limited|error
		signDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vts_sign_duration_seconds",
			Help:    "Time spent producing a signature.",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		}),
		keyRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vts_key_requests_total",
			Help: "Total number of public key requests served.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.signs,
		m.signDuration,
		m.keyRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// observeRequest records a finished request.
func (m *serverMetrics) observeRequest(route string, status int) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// handler serves the registry in the prometheus text format.
func (m *serverMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
