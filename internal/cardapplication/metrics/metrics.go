package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Application outcomes.
const (
	OutcomeOffered  = "offered"
	OutcomeNoOffers = "no_offers"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics provides observability for card applications.
type Metrics struct {
	// Applications by outcome
	Applications *prometheus.CounterVec

	// Offers emitted by card type
	Offers *prometheus.CounterVec

	// Which rule resolved the application
	RuleSelected *prometheus.CounterVec

	// Full submission latency, registration included
	EvaluateLatency prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Applications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cartoes_applications_total",
			Help: "Card applications by outcome",
		}, []string{"outcome"}),

		Offers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cartoes_offers_total",
			Help: "Card offers emitted by card type",
		}, []string{"card_type"}),

		RuleSelected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cartoes_rule_selected_total",
			Help: "Eligibility rule selected for each evaluated application",
		}, []string{"rule"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cartoes_evaluate_duration_seconds",
			Help:    "Duration of a card application submission",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.Applications.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementOffer(cardType string) {
	if m != nil {
		m.Offers.WithLabelValues(cardType).Inc()
	}
}

func (m *Metrics) IncrementRule(rule string) {
	if m != nil {
		m.RuleSelected.WithLabelValues(rule).Inc()
	}
}

func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
