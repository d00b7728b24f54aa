package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hris_payroll"

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	PayrollGenerated   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	Punches            *prometheus.CounterVec
	LeaveReviews       *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PayrollGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payroll_generated_total",
			Help:      "Payroll rows processed by generation runs, by result.",
		}, []string{"result"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payroll_generation_duration_seconds",
			Help:      "Wall time of a whole generation run.",
			Buckets:   prometheus.DefBuckets,
		}),
		Punches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attendance_punches_total",
			Help:      "Attendance writes, by kind and derived status.",
		}, []string{"kind", "status"}),
		LeaveReviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leave_reviews_total",
			Help:      "Leave requests reviewed, by decision.",
		}, []string{"decision"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to the broker, by subject and result.",
		}, []string{"subject", "result"}),
	}

	reg.MustRegister(
		m.PayrollGenerated,
		m.GenerationDuration,
		m.Punches,
		m.LeaveReviews,
		m.EventsPublished,
	)
	return m
}

// NewNop returns collectors registered on a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
