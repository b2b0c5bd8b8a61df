package db

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2write "github.com/influxdata/influxdb-client-go/v2/api/write"
	influxdb2domain "github.com/influxdata/influxdb-client-go/v2/domain"

	"dev.hon.one/nbsync/common"
	"dev.hon.one/nbsync/util"
)

// Measurement names.
const (
	MeasurementSyncRun    = "sync_run"
	MeasurementSyncRecord = "sync_record"
)

var clientMutex sync.Mutex
var client influxdb2.Client
var clientWriteAPI influxdb2api.WriteAPI
var clientConfigured bool

// StartClient - Start DB client in the background, if InfluxDB is configured.
// The returned channel is closed once points can be written. It is closed
// right away when InfluxDB is not configured and never closed if the client
// shuts down before the database came up.
func StartClient(waitGroup *sync.WaitGroup, shutdown *util.ShutdownChannelDistributor) <-chan struct{} {
	ready := make(chan struct{})
	if common.GlobalConfig.InfluxDBURL == "" {
		log.Trace("No InfluxDB URL configured, not storing run history")
		close(ready)
		return ready
	}

	// Setup shutdown signal and waitgroup
	shutdownChannel := make(chan bool, 1)
	if !shutdown.AddListener(shutdownChannel) {
		return ready
	}
	waitGroup.Add(1)
	clientMutex.Lock()
	clientConfigured = true
	clientMutex.Unlock()

	newClient := influxdb2.NewClient(common.GlobalConfig.InfluxDBURL, common.GlobalConfig.InfluxDBToken)

	cleanup := func() {
		clientMutex.Lock()
		localWriteAPI := clientWriteAPI
		clientWriteAPI = nil
		client = nil
		clientConfigured = false
		clientMutex.Unlock()
		if localWriteAPI != nil {
			localWriteAPI.Flush()
		}
		newClient.Close()
		log.Info("DB client stopped")
		waitGroup.Done()
	}

	go func() {
		// Wait for DB connection (true) to come up or for shutdown signal (false)
		if !waitForDBUp(newClient, shutdownChannel) {
			cleanup()
			return
		}

		// Setup async write API and error logging
		writeAPI := newClient.WriteAPI(common.GlobalConfig.InfluxDBOrg, common.GlobalConfig.InfluxDBBucket)
		writeAPIErrors := writeAPI.Errors()
		go func() {
			for err := range writeAPIErrors {
				log.WithError(err).Error("Failed to write to database")
			}
		}()
		clientMutex.Lock()
		client = newClient
		clientWriteAPI = writeAPI
		clientMutex.Unlock()
		close(ready)
		log.Info("DB client started: ", common.GlobalConfig.InfluxDBURL)

		<-shutdownChannel
		cleanup()
	}()
	return ready
}

// WaitReady - Wait for the client from StartClient to be ready, or for the context to end.
func WaitReady(ctx context.Context, ready <-chan struct{}) bool {
	select {
	case <-ready:
		return true
	case <-ctx.Done():
		return false
	}
}

func waitForDBUp(dbClient influxdb2.Client, shutdownChannel <-chan bool) bool {
	checkHealth := func() bool {
		health, err := dbClient.Health(context.Background())
		if err != nil {
			log.WithError(err).Tracef("Database connection error")
			return false
		}
		// An unhealthy server answers without an error
		if health == nil || health.Status != influxdb2domain.HealthCheckStatusPass {
			log.Trace("Database not healthy yet")
			return false
		}
		return true
	}
	if checkHealth() {
		return true
	}
	log.Info("Waiting for database")
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if checkHealth() {
				return true
			}
		case <-shutdownChannel:
			return false
		}
	}
}

func writePoint(point *influxdb2write.Point) {
	clientMutex.Lock()
	defer clientMutex.Unlock()
	if clientWriteAPI == nil {
		if clientConfigured {
			log.WithField("measurement", point.Name()).Warn("Database not ready, dropping point")
		}
		return
	}
	clientWriteAPI.WritePoint(point)
}

// SyncRunPoint - Point for a run entry.
func SyncRunPoint(entry common.SyncRunEntry) *influxdb2write.Point {
	return influxdb2.NewPointWithMeasurement(MeasurementSyncRun).
		AddTag("dry_run", boolTag(entry.DryRun)).
		AddField("duration_seconds", entry.Duration.Seconds()).
		AddField("success", entry.Success).
		AddField("record_count", entry.RecordCount).
		SetTime(entry.Time)
}

// SyncRecordPoint - Point for a record entry.
func SyncRecordPoint(entry common.SyncRecordEntry) *influxdb2write.Point {
	return influxdb2.NewPointWithMeasurement(MeasurementSyncRecord).
		AddTag("hostname", entry.Hostname).
		AddTag("role", entry.Role).
		AddField("member_count", entry.MemberCount).
		AddField("interface_count", entry.InterfaceCount).
		AddField("address_count", entry.AddressCount).
		AddField("success", entry.Success).
		SetTime(entry.Time)
}

// StoreSyncRunEntry - Attempt to store a run entry in the DB.
func StoreSyncRunEntry(entry common.SyncRunEntry) {
	log.WithFields(log.Fields{
		"time":         entry.Time,
		"duration":     entry.Duration,
		"success":      entry.Success,
		"record_count": entry.RecordCount,
		"dry_run":      entry.DryRun,
	}).Trace("Sync run entry")

	writePoint(SyncRunPoint(entry))
}

// StoreSyncRecordEntry - Attempt to store a record entry in the DB.
func StoreSyncRecordEntry(entry common.SyncRecordEntry) {
	log.WithFields(log.Fields{
		"hostname":        entry.Hostname,
		"role":            entry.Role,
		"member_count":    entry.MemberCount,
		"interface_count": entry.InterfaceCount,
		"address_count":   entry.AddressCount,
		"success":         entry.Success,
	}).Trace("Sync record entry")

	writePoint(SyncRecordPoint(entry))
}

func boolTag(value bool) string {
	if value {
		return "true"
	}
	return "false"
}
