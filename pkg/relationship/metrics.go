package relationship

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects relationship fetch counters.
type Metrics struct {
	Queries  *prometheus.CounterVec
	Missing  *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics builds the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Queries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docblocks",
				Subsystem: "relationship",
				Name:      "queries_total",
				Help:      "Relationship data queries issued, by list and cardinality",
			},
			[]string{"list", "cardinality"},
		),
		Missing: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docblocks",
				Subsystem: "relationship",
				Name:      "missing_total",
				Help:      "Single relationship lookups that found no record",
			},
			[]string{"list"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "docblocks",
				Subsystem: "relationship",
				Name:      "query_duration_seconds",
				Help:      "Relationship data query duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"list", "cardinality"},
		),
	}
}

func (m *Metrics) observeQuery(list, cardinality string, started time.Time) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(list, cardinality).Inc()
	m.Duration.WithLabelValues(list, cardinality).Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeMissing(list string) {
	if m == nil {
		return
	}
	m.Missing.WithLabelValues(list).Inc()
}
