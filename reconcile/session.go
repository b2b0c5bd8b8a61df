package reconcile

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"dev.hon.one/nbsync/netbox"
)

// EntityKind - Remote namespace name, used for counting and metrics labels.
type EntityKind string

// Entity kinds.
const (
	EntitySite           EntityKind = "site"
	EntityManufacturer   EntityKind = "manufacturer"
	EntityDeviceRole     EntityKind = "device_role"
	EntityDeviceType     EntityKind = "device_type"
	EntityDevice         EntityKind = "device"
	EntityVirtualChassis EntityKind = "virtual_chassis"
	EntityInterface      EntityKind = "interface"
	EntityVLAN           EntityKind = "vlan"
	EntityPrefix         EntityKind = "prefix"
	EntityIPAddress      EntityKind = "ip_address"
)

// Recorder - Receives create/reuse events, e.g. for metrics.
type Recorder interface {
	EntityCreated(kind EntityKind)
	EntityReused(kind EntityKind)
}

// Summary - Counts for one session.
type Summary struct {
	Records int
	Created map[EntityKind]int
	Reused  map[EntityKind]int
}

// Session - One reconciliation run: the remote, the reference cache and counters.
// Not safe for concurrent use.
type Session struct {
	remote   Remote
	cache    *ReferenceCache
	recorder Recorder
	summary  Summary
}

// NewSession - Create a session and load the reference cache. Any remote failure is returned as is.
func NewSession(ctx context.Context, remote Remote, recorder Recorder) (*Session, error) {
	session := &Session{
		remote:   remote,
		cache:    newReferenceCache(),
		recorder: recorder,
		summary: Summary{
			Created: make(map[EntityKind]int),
			Reused:  make(map[EntityKind]int),
		},
	}
	if err := session.loadReferenceCache(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// Cache - The session's reference cache.
func (session *Session) Cache() *ReferenceCache {
	return session.cache
}

// Summary - Copy of the counts so far.
func (session *Session) Summary() Summary {
	summary := Summary{
		Records: session.summary.Records,
		Created: make(map[EntityKind]int, len(session.summary.Created)),
		Reused:  make(map[EntityKind]int, len(session.summary.Reused)),
	}
	for kind, count := range session.summary.Created {
		summary.Created[kind] = count
	}
	for kind, count := range session.summary.Reused {
		summary.Reused[kind] = count
	}
	return summary
}

func (session *Session) created(kind EntityKind, fields log.Fields) {
	session.summary.Created[kind]++
	if session.recorder != nil {
		session.recorder.EntityCreated(kind)
	}
	log.WithFields(fields).Tracef("Created %v", kind)
}

func (session *Session) reused(kind EntityKind) {
	session.summary.Reused[kind]++
	if session.recorder != nil {
		session.recorder.EntityReused(kind)
	}
}

// ensureDeviceType returns the device type ID for the entry's model, creating it if unknown.
func (session *Session) ensureDeviceType(ctx context.Context, entry InventoryEntry) (int, error) {
	if id, ok := session.cache.DeviceType(entry.Model); ok {
		session.reused(EntityDeviceType)
		return id, nil
	}
	deviceType, err := session.remote.CreateDeviceType(ctx, netbox.DeviceTypeRequest{
		Manufacturer: entry.ManufacturerID,
		Model:        entry.Model,
		Slug:         entry.Slug,
	})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create device type %v", entry.Model)
	}
	session.cache.deviceTypes[entry.Model] = deviceType.ID
	session.created(EntityDeviceType, log.Fields{"model": entry.Model, "slug": entry.Slug, "id": deviceType.ID})
	return deviceType.ID, nil
}

// ensureVLAN returns the VLAN ID for a VLAN interface name, creating the VLAN if unknown.
func (session *Session) ensureVLAN(ctx context.Context, name string) (int, error) {
	if id, ok := session.cache.VLAN(name); ok {
		session.reused(EntityVLAN)
		return id, nil
	}
	vid, err := VLANIDFromInterface(name)
	if err != nil {
		return 0, err
	}
	vlan, err := session.remote.CreateVLAN(ctx, netbox.VLAN{VID: vid, Name: name})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create VLAN %v", name)
	}
	session.cache.vlans[name] = vlan.ID
	session.created(EntityVLAN, log.Fields{"vlan": name, "vid": vid, "id": vlan.ID})
	return vlan.ID, nil
}
