package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RateLimited   prometheus.Counter
	LimiterErrors prometheus.Counter
	Degraded      prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "cartoes_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
		LimiterErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "cartoes_ratelimit_store_errors_total",
			Help: "Failed checks against the primary rate limit store",
		}),
		Degraded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cartoes_ratelimit_degraded",
			Help: "1 while rate limiting is served by the in-memory fallback",
		}),
	}
}

func (m *Metrics) IncrementRateLimited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}

func (m *Metrics) IncrementLimiterErrors() {
	if m != nil {
		m.LimiterErrors.Inc()
	}
}

func (m *Metrics) SetDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.Degraded.Set(1)
		return
	}
	m.Degraded.Set(0)
}
