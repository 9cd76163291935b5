package lookup

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/tweetcollector/internal/model"
)

// Metrics counts lookup progress.
type Metrics struct {
	BatchesTotal *prometheus.CounterVec
	RecordsTotal prometheus.Counter
	ErrorsTotal  prometheus.Counter
}

// NewMetrics constructs the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tweetcollector_lookup_batches_total",
				Help: "Lookup batches by status.",
			},
			[]string{"status"},
		),
		RecordsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tweetcollector_lookup_records_total",
				Help: "Tweet documents returned by lookup.",
			},
		),
		ErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tweetcollector_lookup_errors_total",
				Help: "Error records written for ids of failed batches.",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.BatchesTotal, m.RecordsTotal, m.ErrorsTotal)
	}
	return m
}

func (m *Metrics) observeBatch(b model.BatchOutcome) {
	if m == nil {
		return
	}
	if b.Failed() {
		m.BatchesTotal.WithLabelValues("failed").Inc()
		m.ErrorsTotal.Add(float64(len(b.IDs)))
		return
	}
	m.BatchesTotal.WithLabelValues("ok").Inc()
	m.RecordsTotal.Add(float64(len(b.Records)))
}
