package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks remote API calls.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophsocial_api_requests_total",
			Help: "Tracks the number of remote API requests.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gophsocial_api_request_duration_seconds",
			Help:    "Tracks the latencies for remote API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observe(method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, status).Inc()
	m.duration.WithLabelValues(method).Observe(seconds)
}
