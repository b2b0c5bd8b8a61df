package util

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NewExporterMetric - Convenience function to create, register and set a gauge containing exporter info.
func NewExporterMetric(registry *prometheus.Registry, namespace string, version string) {
	infoLabels := make(prometheus.Labels)
	infoLabels["version"] = version
	NewGauge(registry, namespace, "exporter", "info", "Metadata about the exporter.", infoLabels).Set(1)
}

// NewGauge - Convenience function to create, register and return a gauge.
func NewGauge(registry *prometheus.Registry, namespace string, subsystem string, name string, help string, constLabels prometheus.Labels) prometheus.Gauge {
	var metric = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: constLabels,
	})
	registry.MustRegister(metric)
	return metric
}

// NewCounterVec - Convenience function to create, register and return a labeled counter.
func NewCounterVec(registry *prometheus.Registry, namespace string, subsystem string, name string, help string, constLabels prometheus.Labels, labelNames []string) *prometheus.CounterVec {
	var metric = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: constLabels,
	}, labelNames)
	registry.MustRegister(metric)
	return metric
}
