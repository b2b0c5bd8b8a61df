package db

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	influxdb2write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"dev.hon.one/nbsync/common"
	"dev.hon.one/nbsync/util"
)

func pointTags(point *influxdb2write.Point) map[string]string {
	tags := make(map[string]string)
	for _, tag := range point.TagList() {
		tags[tag.Key] = tag.Value
	}
	return tags
}

func pointFields(point *influxdb2write.Point) map[string]interface{} {
	fields := make(map[string]interface{})
	for _, field := range point.FieldList() {
		fields[field.Key] = field.Value
	}
	return fields
}

func TestSyncRunPoint(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	point := SyncRunPoint(common.SyncRunEntry{
		Time:        now,
		Duration:    1500 * time.Millisecond,
		Success:     true,
		RecordCount: 3,
		DryRun:      true,
	})

	assert.Equal(t, "sync_run", point.Name())
	assert.Equal(t, now, point.Time())
	assert.Equal(t, map[string]string{"dry_run": "true"}, pointTags(point))
	assert.Equal(t, map[string]interface{}{
		"duration_seconds": 1.5,
		"success":          true,
		"record_count":     int64(3),
	}, pointFields(point))
}

func TestSyncRecordPoint(t *testing.T) {
	point := SyncRecordPoint(common.SyncRecordEntry{
		Time:           time.Now(),
		Hostname:       "acc_sw_1",
		Role:           "access_switch",
		MemberCount:    2,
		InterfaceCount: 4,
		AddressCount:   1,
		Success:        false,
	})

	assert.Equal(t, "sync_record", point.Name())
	assert.Equal(t, map[string]string{"hostname": "acc_sw_1", "role": "access_switch"}, pointTags(point))
	fields := pointFields(point)
	assert.Equal(t, int64(2), fields["member_count"])
	assert.Equal(t, int64(4), fields["interface_count"])
	assert.Equal(t, int64(1), fields["address_count"])
	assert.Equal(t, false, fields["success"])
}

func TestStoreWithoutClient(t *testing.T) {
	// Not started, so nothing is written
	assert.NotPanics(t, func() {
		StoreSyncRunEntry(common.SyncRunEntry{Time: time.Now()})
		StoreSyncRecordEntry(common.SyncRecordEntry{Time: time.Now(), Hostname: "a"})
	})
}

func TestStartClientWithoutURL(t *testing.T) {
	previous := common.GlobalConfig
	defer func() { common.GlobalConfig = previous }()
	common.GlobalConfig.InfluxDBURL = ""

	var waitGroup sync.WaitGroup
	shutdown := util.NewShutdownChannelDistributor(nil)
	ready := StartClient(&waitGroup, shutdown)
	assert.True(t, WaitReady(context.Background(), ready))
	shutdown.Shutdown()
	waitGroup.Wait()
	assert.Nil(t, clientWriteAPI)
}

// influxServer - InfluxDB stub answering health checks and collecting written lines.
type influxServer struct {
	mutex   sync.Mutex
	healthy bool
	lines   []string
}

func (server *influxServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	switch r.URL.Path {
	case "/health":
		w.Header().Set("Content-Type", "application/json")
		if !server.healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"name": "influxdb", "message": "starting", "status": "fail", "checks": []}`)
			return
		}
		fmt.Fprint(w, `{"name": "influxdb", "message": "ready for queries and writes", "status": "pass", "checks": [], "version": "2.7.0", "commit": "abc"}`)
	case "/api/v2/write":
		body, _ := io.ReadAll(r.Body)
		server.lines = append(server.lines, strings.Split(strings.TrimSpace(string(body)), "\n")...)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (server *influxServer) setHealthy(healthy bool) {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	server.healthy = healthy
}

func (server *influxServer) Lines() []string {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return append([]string(nil), server.lines...)
}

func setupInflux(t *testing.T, url string) {
	previous := common.GlobalConfig
	t.Cleanup(func() { common.GlobalConfig = previous })
	common.GlobalConfig.InfluxDBURL = url
	common.GlobalConfig.InfluxDBToken = "token"
	common.GlobalConfig.InfluxDBOrg = "org"
	common.GlobalConfig.InfluxDBBucket = "nbsync"
}

func TestStartClientReady(t *testing.T) {
	influx := &influxServer{healthy: true}
	server := httptest.NewServer(influx)
	defer server.Close()
	setupInflux(t, server.URL)

	var waitGroup sync.WaitGroup
	shutdown := util.NewShutdownChannelDistributor(nil)
	ready := StartClient(&waitGroup, shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.True(t, WaitReady(ctx, ready))

	// Written right after readiness, flushed on shutdown
	StoreSyncRunEntry(common.SyncRunEntry{Time: time.Now(), Duration: time.Second, Success: true, RecordCount: 2})
	shutdown.Shutdown()
	waitGroup.Wait()

	lines := influx.Lines()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "sync_run,dry_run=false "), lines[0])
	assert.Nil(t, clientWriteAPI)
}

func TestStartClientWaitsForHealth(t *testing.T) {
	influx := &influxServer{healthy: false}
	server := httptest.NewServer(influx)
	defer server.Close()
	setupInflux(t, server.URL)

	var waitGroup sync.WaitGroup
	shutdown := util.NewShutdownChannelDistributor(nil)
	ready := StartClient(&waitGroup, shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.False(t, WaitReady(ctx, ready))

	// Not ready yet, so this one is dropped
	StoreSyncRunEntry(common.SyncRunEntry{Time: time.Now()})

	influx.setHealthy(true)
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.True(t, WaitReady(ctx, ready))

	shutdown.Shutdown()
	waitGroup.Wait()
	assert.Empty(t, influx.Lines())
}

func TestStartClientShutdownBeforeReady(t *testing.T) {
	server := httptest.NewServer(&influxServer{healthy: false})
	defer server.Close()
	setupInflux(t, server.URL)

	var waitGroup sync.WaitGroup
	shutdown := util.NewShutdownChannelDistributor(nil)
	ready := StartClient(&waitGroup, shutdown)
	shutdown.Shutdown()
	waitGroup.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.False(t, WaitReady(ctx, ready))
	assert.False(t, clientConfigured)
}
