package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Uploaded *prometheus.CounterVec
	Replaced prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Uploaded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "loanflow_documents_uploaded_total",
			Help: "Documents stored, by document type",
		}, []string{"document_type"}),
		Replaced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanflow_documents_replaced_total",
			Help: "Uploads that superseded an existing document of the same type",
		}),
	}
}

func (m *Metrics) IncrementUploaded(docType string) {
	m.Uploaded.WithLabelValues(docType).Inc()
}

func (m *Metrics) IncrementReplaced() {
	m.Replaced.Inc()
}
