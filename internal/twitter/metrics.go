package twitter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for API calls.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    prometheus.Histogram
	RetriesTotal       prometheus.Counter
	RateLimitWaitTotal prometheus.Counter
}

// NewMetrics constructs the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twitter_api_requests_total",
				Help: "Total statuses/lookup requests by outcome.",
			},
			[]string{"outcome"},
		),
		RequestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "twitter_api_request_duration_seconds",
				Help:    "Latency of statuses/lookup requests.",
				Buckets: prometheus.DefBuckets,
			},
		),
		RetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "twitter_api_retries_total",
				Help: "Total number of retry attempts scheduled.",
			},
		),
		RateLimitWaitTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "twitter_api_rate_limit_waits_total",
				Help: "Total number of waits for a rate-limit window to reset.",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.RetriesTotal, m.RateLimitWaitTotal)
	}
	return m
}

func (m *Metrics) observeRequest(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
	m.RequestDuration.Observe(d.Seconds())
}

func (m *Metrics) incRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

func (m *Metrics) incRateLimitWaits() {
	if m == nil {
		return
	}
	m.RateLimitWaitTotal.Inc()
}
