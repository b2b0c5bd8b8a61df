package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.hon.one/nbsync/util"
)

func TestServeMux(t *testing.T) {
	registry := prometheus.NewRegistry()
	util.NewExporterMetric(registry, "nbsync", "1.2.3")
	server := httptest.NewServer(NewServeMux(registry))
	defer server.Close()

	get := func(path string) (int, string) {
		response, err := http.Get(server.URL + path)
		require.NoError(t, err)
		defer response.Body.Close()
		body, err := io.ReadAll(response.Body)
		require.NoError(t, err)
		return response.StatusCode, string(body)
	}

	status, body := get("/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "NBSync version")
	assert.Contains(t, body, "/metrics")

	status, body = get("/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `nbsync_exporter_info{version="1.2.3"} 1`)

	status, _ = get("/other")
	assert.Equal(t, http.StatusNotFound, status)
}
