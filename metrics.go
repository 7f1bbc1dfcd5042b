package unsupervisedkg

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts extraction work. Every builder registers on its own
// registry so several builders can live in one process.
type Metrics struct {
	Registry *prometheus.Registry

	// paragraphs counts processed paragraphs by status (ok, failed)
	paragraphs *prometheus.CounterVec
	// failures counts failed paragraphs by error kind
	failures *prometheus.CounterVec
	// relations counts relations emitted per relation type
	relations *prometheus.CounterVec
	// duration measures per paragraph processing time
	duration prometheus.Histogram
	// persisted counts relations written to the database
	persisted prometheus.Counter
}

// NewMetrics registers the extraction metrics on a fresh registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		paragraphs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unsupervised_kg",
			Subsystem: "extraction",
			Name:      "paragraphs_total",
			Help:      "Total paragraphs processed by status",
		}, []string{"status"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unsupervised_kg",
			Subsystem: "extraction",
			Name:      "failures_total",
			Help:      "Total failed paragraphs by error kind",
		}, []string{"kind"}),
		relations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unsupervised_kg",
			Subsystem: "extraction",
			Name:      "relations_total",
			Help:      "Total relations extracted by relation type",
		}, []string{"relation_type"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "unsupervised_kg",
			Subsystem: "extraction",
			Name:      "paragraph_duration_seconds",
			Help:      "Paragraph processing time in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		persisted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "unsupervised_kg",
			Subsystem: "storage",
			Name:      "relations_persisted_total",
			Help:      "Total relations written to the database",
		}),
	}
}
