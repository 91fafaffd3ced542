// Package metrics holds the domain counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the review and reconciliation counters. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	reviewActions   *prometheus.CounterVec
	reviewConflicts *prometheus.CounterVec
	batchItems      *prometheus.CounterVec
	flagsRaised     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		reviewActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_actions_total",
				Help: "Review actions applied, by entity kind, action and outcome.",
			},
			[]string{"kind", "action", "outcome"},
		),
		reviewConflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_version_conflicts_total",
				Help: "Optimistic concurrency conflicts that forced a re-read.",
			},
			[]string{"kind"},
		),
		batchItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invoice_batch_items_total",
				Help: "Invoices processed by bulk approval, by outcome.",
			},
			[]string{"outcome"},
		),
		flagsRaised: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registration_flags_computed_total",
				Help: "Registration flags computed on read, by flag.",
			},
			[]string{"flag"},
		),
	}

	if err := register(reg, m.reviewActions, m.reviewConflicts, m.batchItems, m.flagsRaised); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) ObserveReviewAction(kind, action, outcome string) {
	if m == nil {
		return
	}
	m.reviewActions.WithLabelValues(kind, action, outcome).Inc()
}

func (m *Metrics) ObserveReviewConflict(kind string) {
	if m == nil {
		return
	}
	m.reviewConflicts.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveBatchItem(outcome string) {
	if m == nil {
		return
	}
	m.batchItems.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveFlag(flag string) {
	if m == nil {
		return
	}
	m.flagsRaised.WithLabelValues(flag).Inc()
}
