package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks fan-out outcomes and inbox reads.
type Metrics struct {
	Delivered        *prometheus.CounterVec
	DeliveryFailures *prometheus.CounterVec
	MarkedRead       prometheus.Counter
	CacheLookups     *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Delivered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "loanflow_notifications_delivered_total",
			Help: "Notifications written, by recipient group",
		}, []string{"recipient"}), // recipient: "makers", "checkers", "customer"

		DeliveryFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "loanflow_notification_failures_total",
			Help: "Notifications that could not be written, by recipient group",
		}, []string{"recipient"}),

		MarkedRead: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanflow_notifications_marked_read_total",
			Help: "Notifications transitioned from unread to read",
		}),

		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "loanflow_unread_cache_lookups_total",
			Help: "Unread-count cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"
	}
}

func (m *Metrics) IncrementDelivered(recipient string) {
	m.Delivered.WithLabelValues(recipient).Inc()
}

func (m *Metrics) IncrementDeliveryFailures(recipient string) {
	m.DeliveryFailures.WithLabelValues(recipient).Inc()
}

func (m *Metrics) IncrementMarkedRead() {
	m.MarkedRead.Inc()
}

func (m *Metrics) IncrementCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}
