// Package metrics provides Prometheus instrumentation for reservoir
// samplers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mattiaciollaro/reservoir/core/reservoir"
)

// Reporter implements reservoir.MetricsReporter on top of Prometheus.
type Reporter struct {
	reservoirSize   prometheus.Gauge
	seenItems       prometheus.Gauge
	sampledItems    prometheus.Counter
	discardedItems  prometheus.Counter
	windowRollovers prometheus.Counter
}

var _ reservoir.MetricsReporter = (*Reporter)(nil)

// Config holds configuration for metrics collection.
type Config struct {
	// Registry is the Prometheus registerer to use. If nil, uses
	// prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// Namespace overrides the default "reservoir" metric namespace.
	Namespace string

	// Labels are additional constant labels added to all metrics.
	Labels prometheus.Labels
}

// DefaultConfig returns a default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Registry:  prometheus.DefaultRegisterer,
		Namespace: "reservoir",
	}
}

// NewReporter creates a Reporter registered with the configured registerer.
func NewReporter(cfg Config) *Reporter {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "reservoir"
	}

	factory := promauto.With(reg)

	return &Reporter{
		reservoirSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "sampler",
			Name:        "sample_size",
			Help:        "Number of items currently held in the sample",
			ConstLabels: cfg.Labels,
		}),

		seenItems: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "sampler",
			Name:        "seen_items",
			Help:        "Number of items seen since construction or the last reset",
			ConstLabels: cfg.Labels,
		}),

		sampledItems: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "sampler",
			Name:        "sampled_items_total",
			Help:        "Total number of items that entered the sample",
			ConstLabels: cfg.Labels,
		}),

		discardedItems: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "sampler",
			Name:        "discarded_items_total",
			Help:        "Total number of items rejected during the replacement phase",
			ConstLabels: cfg.Labels,
		}),

		windowRollovers: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "sampler",
			Name:        "window_rollovers_total",
			Help:        "Total number of sampling windows closed",
			ConstLabels: cfg.Labels,
		}),
	}
}

// ReportReservoirSize reports the current size of the sample.
func (r *Reporter) ReportReservoirSize(size int) {
	r.reservoirSize.Set(float64(size))
}

// ReportSeenItems reports the running count of items seen.
func (r *Reporter) ReportSeenItems(count int64) {
	r.seenItems.Set(float64(count))
}

// ReportSampledItems reports items that entered the sample.
func (r *Reporter) ReportSampledItems(count int) {
	r.sampledItems.Add(float64(count))
}

// ReportDiscardedItems reports items rejected during replacement.
func (r *Reporter) ReportDiscardedItems(count int) {
	r.discardedItems.Add(float64(count))
}

// ReportWindowRollovers reports completed window rollovers.
func (r *Reporter) ReportWindowRollovers(count int) {
	r.windowRollovers.Add(float64(count))
}
