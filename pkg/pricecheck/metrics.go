package pricecheck

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for the requests counter.
const (
	OutcomeHit       = "hit"
	OutcomeSharedHit = "shared_hit"
	OutcomeCoalesced = "coalesced"
	OutcomeNetwork   = "network"
	OutcomeForbidden = "forbidden"
	OutcomeLocal     = "local"
	OutcomeError     = "error"
)

// Metrics instruments a Checker.
type Metrics struct {
	Requests       *prometheus.CounterVec
	NetworkSeconds prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "checkoutkit",
				Subsystem: "pricecheck",
				Name:      "requests_total",
				Help:      "Price check requests by how they were served",
			},
			[]string{"outcome"},
		),
		NetworkSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "checkoutkit",
				Subsystem: "pricecheck",
				Name:      "network_seconds",
				Help:      "Latency of pricing service calls",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.NetworkSeconds)
	}
	return m
}

func (m *Metrics) observe(outcome string) {
	m.Requests.WithLabelValues(outcome).Inc()
}
