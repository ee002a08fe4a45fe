package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rakesh-tirumalaparapu/zipp/internal/application/models"
)

// Metrics covers workflow transitions and the status distribution.
type Metrics struct {
	Transitions     *prometheus.CounterVec
	GuardRejections *prometheus.CounterVec
	ActionDuration  *prometheus.HistogramVec
	ByStatus        *prometheus.GaugeVec
	IDRetries       prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "loanflow_application_transitions_total",
			Help: "Applied workflow transitions",
		}, []string{"transition"}), // e.g. "submitted", "maker_approved", "checker_rejected"

		GuardRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "loanflow_application_guard_rejections_total",
			Help: "Workflow actions refused before any mutation, by error code",
		}, []string{"action", "code"}),

		ActionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loanflow_application_action_duration_seconds",
			Help:    "Workflow action latency including the transaction",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"action"}),

		ByStatus: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "loanflow_applications",
			Help: "Applications by normalised status, refreshed on a schedule",
		}, []string{"status"}),

		IDRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanflow_application_number_retries_total",
			Help: "Inserts retried after an application number collision",
		}),
	}
}

func (m *Metrics) IncrementTransition(transition string) {
	m.Transitions.WithLabelValues(transition).Inc()
}

func (m *Metrics) IncrementGuardRejection(action, code string) {
	m.GuardRejections.WithLabelValues(action, code).Inc()
}

func (m *Metrics) ObserveAction(action string, start time.Time) {
	m.ActionDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementIDRetries() {
	m.IDRetries.Inc()
}

// SetStatusCounts publishes every canonical status, zero when absent.
func (m *Metrics) SetStatusCounts(counts models.StatusCounts) {
	for _, st := range []models.Status{models.StatusWithMaker, models.StatusWithChecker, models.StatusApproved, models.StatusRejected} {
		m.ByStatus.WithLabelValues(string(st)).Set(float64(counts[st]))
	}
}
