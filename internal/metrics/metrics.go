package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters of the review workflow.
//
// Metrics:
//   - social_submissions_total{action} - submissions created or resubmitted
//   - social_reviews_total{role,decision,result} - review decisions by outcome
//   - social_adjustments_total{action} - adjustments added or removed
//   - social_events_published_total{result} - change events handed to publishers
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SubmissionsTotal     *prometheus.CounterVec
	ReviewsTotal         *prometheus.CounterVec
	AdjustmentsTotal     *prometheus.CounterVec
	EventsPublishedTotal *prometheus.CounterVec
}

// New registers the counters with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_submissions_total",
				Help: "Total number of submissions written",
			},
			[]string{"action"}, // "created" or "updated"
		),
		ReviewsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_reviews_total",
				Help: "Total number of review decisions",
			},
			[]string{"role", "decision", "result"},
		),
		AdjustmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_adjustments_total",
				Help: "Total number of adjustment ledger changes",
			},
			[]string{"action"},
		),
		EventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_events_published_total",
				Help: "Total number of change events published",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) Submission(action string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) Review(role, decision, result string) {
	if m == nil {
		return
	}
	m.ReviewsTotal.WithLabelValues(role, decision, result).Inc()
}

func (m *Metrics) Adjustment(action string) {
	if m == nil {
		return
	}
	m.AdjustmentsTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) EventPublished(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublishedTotal.WithLabelValues(result).Inc()
}
