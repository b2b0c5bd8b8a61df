// Package syncing runs reconciliation against NetBox, once or on an interval,
// and records the results as metrics and run history.
package syncing

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"dev.hon.one/nbsync/common"
	"dev.hon.one/nbsync/db"
	"dev.hon.one/nbsync/netbox"
	"dev.hon.one/nbsync/reconcile"
	"dev.hon.one/nbsync/util"
)

// StartSyncer - Start the periodic syncer in the background.
func StartSyncer(waitGroup *sync.WaitGroup, shutdown *util.ShutdownChannelDistributor, metrics *Metrics) {
	interval := common.GlobalConfig.SyncInterval()
	if interval <= 0 {
		log.Error("Syncer needs a positive sync interval")
		return
	}

	// Setup shutdown signal and waitgroup
	shutdownChannel := make(chan bool, 1)
	if !shutdown.AddListener(shutdownChannel) {
		return
	}
	waitGroup.Add(1)

	// Cancel an ongoing run on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-shutdownChannel
		cancel()
	}()

	go func() {
		defer waitGroup.Done()
		defer log.Info("Syncer stopped")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Sync immediately
		syncLogged(ctx, metrics)

		for {
			select {
			case <-ticker.C:
				syncLogged(ctx, metrics)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.WithFields(log.Fields{
		"interval": interval,
	}).Info("Syncer started")
}

func syncLogged(ctx context.Context, metrics *Metrics) {
	if err := RunOnce(ctx, metrics); err != nil {
		if ctx.Err() != nil {
			log.WithError(err).Warn("Sync run interrupted")
			return
		}
		log.WithError(err).Error("Sync run failed")
	}
}

// NewRemote - NetBox client for the config, only logging writes in dry run mode.
func NewRemote(config common.Config) reconcile.Remote {
	client := netbox.NewClient(config.NetBoxURL, config.NetBoxToken, config.NetBoxTimeout())
	if config.DryRun {
		log.Info("Dry run, NetBox will not be modified")
		return netbox.NewDryRun(client)
	}
	return client
}

// RunOnce - Load the device records and reconcile them against NetBox.
func RunOnce(ctx context.Context, metrics *Metrics) error {
	config := common.GlobalConfig
	startTime := time.Now()
	log.WithFields(log.Fields{
		"netbox_url": config.NetBoxURL,
		"input_path": config.InputPath,
	}).Info("Starting sync run")

	var summary reconcile.Summary
	err := func() error {
		records, err := common.LoadRecords(config.InputPath)
		if err != nil {
			return err
		}
		options := reconcile.Options{
			Recorder:   metrics,
			RecordDone: recordDone(metrics),
		}
		summary, err = reconcile.Run(ctx, NewRemote(config), records, options)
		return err
	}()

	// Record time and duration
	duration := time.Since(startTime)
	metrics.ObserveRun(duration, err == nil)
	db.StoreSyncRunEntry(common.SyncRunEntry{
		Time:        startTime,
		Duration:    duration,
		Success:     err == nil,
		RecordCount: summary.Records,
		DryRun:      config.DryRun,
	})
	logSummary(summary, duration, err == nil)

	return err
}

func recordDone(metrics *Metrics) func(common.DeviceRecord, *reconcile.DeviceGroup, time.Duration, error) {
	return func(record common.DeviceRecord, group *reconcile.DeviceGroup, duration time.Duration, err error) {
		metrics.RecordDone(err == nil)
		db.StoreSyncRecordEntry(newRecordEntry(record, group, duration, err))
	}
}

// newRecordEntry - History entry for a record. The role is the one the group was synced with, if it got that far.
func newRecordEntry(record common.DeviceRecord, group *reconcile.DeviceGroup, duration time.Duration, err error) common.SyncRecordEntry {
	entry := common.SyncRecordEntry{
		Time:     time.Now().Add(-duration),
		Hostname: record.Hostname(),
		Success:  err == nil,
	}
	if group == nil {
		entry.Role = reconcile.ClassifyRole(record.Hostname())
		return entry
	}
	entry.Role = group.Role
	entry.MemberCount = len(group.Members)
	entry.InterfaceCount = len(group.Interfaces)
	entry.AddressCount = group.AddressCount()
	return entry
}

func logSummary(summary reconcile.Summary, duration time.Duration, success bool) {
	created := 0
	for kind, count := range summary.Created {
		created += count
		log.WithFields(log.Fields{
			"kind":  kind,
			"count": count,
		}).Debug("Created entities")
	}
	reused := 0
	for _, count := range summary.Reused {
		reused += count
	}

	log.WithFields(log.Fields{
		"records":  summary.Records,
		"created":  created,
		"reused":   reused,
		"duration": duration,
		"success":  success,
	}).Info("Sync run finished")
}
