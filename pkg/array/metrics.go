package array

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zurustar/arraystore/pkg/storage"
)

// Metrics counts append outcomes. A nil *Metrics records nothing.
type Metrics struct {
	appends            *prometheus.CounterVec
	elements           prometheus.Histogram
	generalizations    *prometheus.CounterVec
	allocationFailures prometheus.Counter
}

// NewMetrics registers the append metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		appends: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "arraystore_append_total",
			Help: "Total number of array appends, by the path taken.",
		}, []string{"path"}),
		elements: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "arraystore_append_elements",
			Help:    "Number of elements appended per call.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		generalizations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "arraystore_generalizations_total",
			Help: "Total number of stores rebuilt in a more general representation.",
		}, []string{"from", "to"}),
		allocationFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "arraystore_append_allocation_failures_total",
			Help: "Total number of appends that failed to allocate a store.",
		}),
	}
}

func (m *Metrics) observe(path Path, appended int) {
	if m == nil {
		return
	}
	m.appends.WithLabelValues(path.String()).Inc()
	if path != PathNoop {
		m.elements.Observe(float64(appended))
	}
}

func (m *Metrics) generalized(from, to storage.Kind) {
	if m == nil {
		return
	}
	m.generalizations.WithLabelValues(from.String(), to.String()).Inc()
}

func (m *Metrics) allocationFailed() {
	if m == nil {
		return
	}
	m.allocationFailures.Inc()
}
