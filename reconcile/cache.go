package reconcile

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"dev.hon.one/nbsync/netbox"
)

// Defaults created on first run.
const (
	DefaultSiteName         = "default"
	DefaultSiteSlug         = "default"
	DefaultManufacturerName = "Cisco"
	DefaultManufacturerSlug = "cisco"
)

// ReferenceCache - Remote IDs by natural key, one map per namespace.
// Loaded once per session and extended with everything the session creates.
type ReferenceCache struct {
	SiteID         int
	ManufacturerID int
	manufacturers  map[string]int
	deviceTypes    map[string]int
	deviceRoles    map[string]int
	vlans          map[string]int
	prefixes       map[string]struct{}
}

func newReferenceCache() *ReferenceCache {
	return &ReferenceCache{
		manufacturers: make(map[string]int),
		deviceTypes:   make(map[string]int),
		deviceRoles:   make(map[string]int),
		vlans:         make(map[string]int),
		prefixes:      make(map[string]struct{}),
	}
}

// Manufacturer - Cached manufacturer by name.
func (cache *ReferenceCache) Manufacturer(name string) (int, bool) {
	id, ok := cache.manufacturers[name]
	return id, ok
}

// DeviceType - Cached device type by model.
func (cache *ReferenceCache) DeviceType(model string) (int, bool) {
	id, ok := cache.deviceTypes[model]
	return id, ok
}

// DeviceRole - Cached device role by name.
func (cache *ReferenceCache) DeviceRole(name string) (int, bool) {
	id, ok := cache.deviceRoles[name]
	return id, ok
}

// VLAN - Cached VLAN by name.
func (cache *ReferenceCache) VLAN(name string) (int, bool) {
	id, ok := cache.vlans[name]
	return id, ok
}

// HasPrefix - If the CIDR is known.
func (cache *ReferenceCache) HasPrefix(cidr string) bool {
	_, ok := cache.prefixes[cidr]
	return ok
}

// PrefixCount - Number of known prefixes.
func (cache *ReferenceCache) PrefixCount() int {
	return len(cache.prefixes)
}

// loadReferenceCache fills the cache from the remote, creating the defaults where missing.
func (session *Session) loadReferenceCache(ctx context.Context) error {
	cache := session.cache

	// Default site
	site, err := session.remote.FindSite(ctx, DefaultSiteName)
	if err != nil {
		return errors.Wrap(err, "failed to look up default site")
	}
	if site == nil {
		site, err = session.remote.CreateSite(ctx, netbox.Site{Name: DefaultSiteName, Slug: DefaultSiteSlug})
		if err != nil {
			return errors.Wrap(err, "failed to create default site")
		}
		session.created(EntitySite, log.Fields{"site": site.Name, "id": site.ID})
	} else {
		session.reused(EntitySite)
	}
	cache.SiteID = site.ID

	// Manufacturers, with the default one
	manufacturers, err := session.remote.ListManufacturers(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list manufacturers")
	}
	for _, manufacturer := range manufacturers {
		cache.manufacturers[manufacturer.Name] = manufacturer.ID
	}
	if id, ok := cache.manufacturers[DefaultManufacturerName]; ok {
		cache.ManufacturerID = id
		session.reused(EntityManufacturer)
	} else {
		manufacturer, err := session.remote.CreateManufacturer(ctx, netbox.Manufacturer{Name: DefaultManufacturerName, Slug: DefaultManufacturerSlug})
		if err != nil {
			return errors.Wrap(err, "failed to create default manufacturer")
		}
		cache.manufacturers[manufacturer.Name] = manufacturer.ID
		cache.ManufacturerID = manufacturer.ID
		session.created(EntityManufacturer, log.Fields{"manufacturer": manufacturer.Name, "id": manufacturer.ID})
	}

	// Switch roles, created as a batch if there are none
	roles, err := session.remote.ListDeviceRoles(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list device roles")
	}
	addRoles := func(roles []netbox.DeviceRole) {
		for _, role := range roles {
			if isManagedRole(role.Name) {
				cache.deviceRoles[role.Name] = role.ID
			}
		}
	}
	addRoles(roles)
	if len(cache.deviceRoles) == 0 {
		created, err := session.remote.CreateDeviceRoles(ctx, DefaultRoles)
		if err != nil {
			return errors.Wrap(err, "failed to create default device roles")
		}
		addRoles(created)
		for _, role := range created {
			session.created(EntityDeviceRole, log.Fields{"role": role.Name, "id": role.ID})
		}
	}

	deviceTypes, err := session.remote.ListDeviceTypes(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list device types")
	}
	for _, deviceType := range deviceTypes {
		cache.deviceTypes[deviceType.Model] = deviceType.ID
	}

	prefixes, err := session.remote.ListPrefixes(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list prefixes")
	}
	for _, prefix := range prefixes {
		cache.prefixes[prefix.Prefix] = struct{}{}
	}

	vlans, err := session.remote.ListVLANs(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list VLANs")
	}
	for _, vlan := range vlans {
		cache.vlans[vlan.Name] = vlan.ID
	}

	log.WithFields(log.Fields{
		"site_id":            cache.SiteID,
		"manufacturer_id":    cache.ManufacturerID,
		"manufacturer_count": len(cache.manufacturers),
		"device_type_count":  len(cache.deviceTypes),
		"device_role_count":  len(cache.deviceRoles),
		"prefix_count":       len(cache.prefixes),
		"vlan_count":         len(cache.vlans),
	}).Info("Loaded reference cache")

	return nil
}
