// Package telemetry exports factorization decisions as Prometheus metrics.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/edp1096/toy-ybus/pkg/system"
)

const namespace = "ybus"

// Collector implements system.Observer. One collector may be shared by
// systems running in different goroutines.
type Collector struct {
	factors       *prometheus.CounterVec
	factorLatency *prometheus.HistogramVec
	singular      prometheus.Counter
	solveLatency  prometheus.Histogram
}

var _ system.Observer = (*Collector)(nil)

// New registers the collector metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		// Labels: path (cached, trivial, refactor, numeric, full), outcome
		factors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "factor",
			Name:      "total",
			Help:      "Factorization requests by path taken and outcome",
		}, []string{"path", "outcome"}),

		factorLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "factor",
			Name:      "duration_seconds",
			Help:      "Factorization time in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"path"}),

		singular: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "factor",
			Name:      "singular_total",
			Help:      "Factorizations that found a singular matrix",
		}),

		solveLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solve",
			Name:      "duration_seconds",
			Help:      "Triangular solve time in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}

func (c *Collector) ObserveFactor(path system.FactorPath, outcome system.Outcome, elapsed time.Duration) {
	c.factors.WithLabelValues(path.String(), outcome.String()).Inc()
	c.factorLatency.WithLabelValues(path.String()).Observe(elapsed.Seconds())
	if outcome == system.Singular {
		c.singular.Inc()
	}
}

func (c *Collector) ObserveSolve(elapsed time.Duration) {
	c.solveLatency.Observe(elapsed.Seconds())
}
