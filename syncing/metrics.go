package syncing

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	log "github.com/sirupsen/logrus"

	"dev.hon.one/nbsync/common"
	"dev.hon.one/nbsync/reconcile"
	"dev.hon.one/nbsync/util"
)

// PushJob - Pushgateway job name.
const PushJob = "nbsync"

// Record results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics - Prometheus metrics for sync runs, kept for the lifetime of the process.
type Metrics struct {
	Registry        *prometheus.Registry
	created         *prometheus.CounterVec
	reused          *prometheus.CounterVec
	records         *prometheus.CounterVec
	lastRunDuration prometheus.Gauge
	lastRunSuccess  prometheus.Gauge
}

// NewMetrics - Create and register all metrics in a new registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	util.NewExporterMetric(registry, common.PrometheusNamespace, common.AppVersion)

	namespace := common.PrometheusNamespace
	return &Metrics{
		Registry:        registry,
		created:         util.NewCounterVec(registry, namespace, "entities", "created_total", "Entities created in NetBox.", nil, []string{"kind"}),
		reused:          util.NewCounterVec(registry, namespace, "entities", "reused_total", "Entities found in NetBox or the reference cache.", nil, []string{"kind"}),
		records:         util.NewCounterVec(registry, namespace, "", "records_total", "Device records processed.", nil, []string{"result"}),
		lastRunDuration: util.NewGauge(registry, namespace, "last_run", "duration_seconds", "Duration of the last sync run.", nil),
		lastRunSuccess:  util.NewGauge(registry, namespace, "last_run", "success", "If the last sync run succeeded.", nil),
	}
}

// EntityCreated - Count a created entity.
func (metrics *Metrics) EntityCreated(kind reconcile.EntityKind) {
	metrics.created.WithLabelValues(string(kind)).Inc()
}

// EntityReused - Count a reused entity.
func (metrics *Metrics) EntityReused(kind reconcile.EntityKind) {
	metrics.reused.WithLabelValues(string(kind)).Inc()
}

// RecordDone - Count a processed record.
func (metrics *Metrics) RecordDone(success bool) {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}
	metrics.records.WithLabelValues(result).Inc()
}

// ObserveRun - Set the last run gauges.
func (metrics *Metrics) ObserveRun(duration time.Duration, success bool) {
	metrics.lastRunDuration.Set(duration.Seconds())
	if success {
		metrics.lastRunSuccess.Set(1)
	} else {
		metrics.lastRunSuccess.Set(0)
	}
}

// Push - Push all metrics to a Pushgateway.
func (metrics *Metrics) Push(url string) error {
	if err := push.New(url, PushJob).Gatherer(metrics.Registry).Push(); err != nil {
		return errors.Wrapf(err, "failed to push metrics to %v", url)
	}
	log.WithFields(log.Fields{
		"pushgateway_url": url,
	}).Info("Pushed metrics")
	return nil
}

var _ reconcile.Recorder = (*Metrics)(nil)
