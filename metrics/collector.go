// Package metrics exposes component builds of tinymod instances as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andriiyaremenko/tinymod"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

var _ tinymod.Observer = new(Collector)

// Collector counts and times component builds.
// Pass it to Builder.WithObserver and register it once with a prometheus.Registerer.
type Collector struct {
	builds   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewCollector(namespace string) *Collector {
	return &Collector{
		builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "component_builds_total",
				Help:      "Number of component build attempts.",
			},
			[]string{"module", "interface", "lifetime", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "component_build_duration_seconds",
				Help:      "Time spent in component build functions.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"module", "interface", "lifetime"},
		),
	}
}

func (c *Collector) Register(reg prometheus.Registerer) error {
	if err := reg.Register(c.builds); err != nil {
		return err
	}

	return reg.Register(c.duration)
}

func (c *Collector) ObserveBuild(e tinymod.BuildEvent) {
	result := resultSuccess
	if e.Err != nil {
		result = resultFailure
	}

	iface := e.Interface.String()
	lifetime := e.Lifetime.String()

	c.builds.WithLabelValues(e.Module, iface, lifetime, result).Inc()
	c.duration.WithLabelValues(e.Module, iface, lifetime).Observe(e.Duration.Seconds())
}
