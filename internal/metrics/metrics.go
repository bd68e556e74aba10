// Package metrics defines the Prometheus collectors the server exports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	Registry  *prometheus.Registry
	Requests  *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
	PageCache *prometheus.CounterVec
}

// New registers a fresh set of collectors on their own registry, so tests
// can build as many servers as they like.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yatube_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "yatube_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		PageCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yatube_page_cache_total",
			Help: "Page cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}
	m.Registry.MustRegister(
		m.Requests, m.Duration, m.PageCache,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
