package syncing

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.hon.one/nbsync/reconcile"
)

func TestMetricsRecorder(t *testing.T) {
	metrics := NewMetrics()
	metrics.EntityCreated(reconcile.EntityDevice)
	metrics.EntityCreated(reconcile.EntityDevice)
	metrics.EntityReused(reconcile.EntityPrefix)
	metrics.RecordDone(true)
	metrics.RecordDone(false)
	metrics.ObserveRun(2500*time.Millisecond, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.created.WithLabelValues("device")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.reused.WithLabelValues("prefix")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.records.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.records.WithLabelValues(ResultFailure)))
	assert.Equal(t, 2.5, testutil.ToFloat64(metrics.lastRunDuration))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.lastRunSuccess))

	families, err := metrics.Registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, name := range []string{
		"nbsync_entities_created_total",
		"nbsync_entities_reused_total",
		"nbsync_records_total",
		"nbsync_last_run_duration_seconds",
		"nbsync_last_run_success",
		"nbsync_exporter_info",
	} {
		assert.True(t, names[name], name)
	}
}

func TestMetricsPush(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/metrics/job/nbsync", r.URL.Path)
		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	metrics := NewMetrics()
	metrics.EntityCreated(reconcile.EntityVLAN)
	require.NoError(t, metrics.Push(server.URL))
	assert.NotEmpty(t, body)
}

func TestMetricsPushFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewMetrics().Push(server.URL)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to push metrics"))
}
