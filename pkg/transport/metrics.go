package transport

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the executor's Prometheus collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Collectors that are already registered are reused, so several executors
// may share one registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minis3",
		Name:      "requests_total",
		Help:      "Total number of S3 requests sent, partitioned by method and status code.",
	}, []string{"method", "code"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "minis3",
		Name:      "request_duration_seconds",
		Help:      "Histogram of S3 request latencies.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "code"})

	if reg != nil {
		requests = register(reg, requests)
		latency = register(reg, latency)
	}

	return &Metrics{requests: requests, latency: latency}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// observe records one request. status 0 means the request never got an
// answer and is labelled "error".
func (m *Metrics) observe(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, code).Inc()
	m.latency.WithLabelValues(method, code).Observe(elapsed.Seconds())
}
