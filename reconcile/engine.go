// Package reconcile decides, per collected device record, what already exists
// in NetBox and creates the rest: device types, devices and virtual chassis,
// interfaces, VLANs, prefixes and IP addresses.
//
// A run is sequential. Records are processed in input order and the first
// error aborts the run, leaving whatever was created so far.
package reconcile

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"dev.hon.one/nbsync/common"
)

// Options - Optional hooks for a run.
type Options struct {
	// Recorder receives create/reuse events.
	Recorder Recorder
	// RecordDone is called after each record, with the error if it failed.
	RecordDone func(record common.DeviceRecord, group *DeviceGroup, duration time.Duration, err error)
}

// Reconcile - Create the device group for one record, with its interfaces and addresses.
func (session *Session) Reconcile(ctx context.Context, record common.DeviceRecord) (*DeviceGroup, error) {
	hostname := record.Hostname()
	entries := NormalizeInventory(record.Facts.Inventory, session.cache.ManufacturerID)
	role := ClassifyRole(hostname)

	group, err := session.buildChassis(ctx, hostname, entries, role)
	if err != nil {
		return nil, err
	}
	if err := session.syncInterfaces(ctx, group, record.Interfaces); err != nil {
		return group, err
	}
	session.summary.Records++

	log.WithFields(log.Fields{
		"device":          hostname,
		"role":            role,
		"members":         len(group.Members),
		"virtual_chassis": group.VirtualChassisID,
		"interfaces":      len(group.Interfaces),
		"addresses":       group.AddressCount(),
	}).Info("Reconciled device")

	return group, nil
}

// Run - Reconcile all records in order with a fresh session. Stops at the first error.
func Run(ctx context.Context, remote Remote, records []common.DeviceRecord, options Options) (Summary, error) {
	session, err := NewSession(ctx, remote, options.Recorder)
	if err != nil {
		return Summary{}, errors.Wrap(err, "failed to load reference cache")
	}

	for _, record := range records {
		startTime := time.Now()
		group, err := session.Reconcile(ctx, record)
		if options.RecordDone != nil {
			options.RecordDone(record, group, time.Since(startTime), err)
		}
		if err != nil {
			return session.Summary(), errors.Wrapf(err, "device %v", record.Hostname())
		}
	}

	return session.Summary(), nil
}
