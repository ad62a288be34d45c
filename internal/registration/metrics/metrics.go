package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultPrimary   = "primary"
	ResultFallback  = "fallback"
	ResultSimulated = "simulated"
)

type Metrics struct {
	Registrations       *prometheus.CounterVec
	RegistrationLatency prometheus.Histogram
	BreakerOpen         prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cartoes_registration_total",
			Help: "Application registrations by how the identifier was obtained",
		}, []string{"result"}),
		RegistrationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cartoes_registration_duration_seconds",
			Help:    "Time spent obtaining an application identifier, retries included",
			Buckets: prometheus.DefBuckets,
		}),
		BreakerOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cartoes_registration_breaker_open",
			Help: "1 while the registration circuit breaker is open",
		}),
	}
}

func (m *Metrics) ObserveRegistration(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(result).Inc()
	m.RegistrationLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}
