package reconcile

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"dev.hon.one/nbsync/netbox"
)

// Member - A created device of a group. Position is 0 outside a virtual chassis.
type Member struct {
	ID       int
	Name     string
	Serial   string
	Position int
}

// DeviceGroup - One logical device realized as one or more NetBox devices.
type DeviceGroup struct {
	Hostname         string
	Role             string
	VirtualChassisID int
	Members          []Member
	Interfaces       []SyncedInterface
	PrimaryIPv4ID    int
}

// IsVirtualChassis - If the group is a stack of several members.
func (group *DeviceGroup) IsVirtualChassis() bool {
	return len(group.Members) > 1
}

// Primary - The member interfaces and addresses attach to (the master in a virtual chassis).
func (group *DeviceGroup) Primary() Member {
	return group.Members[0]
}

// AddressCount - Number of addresses created for the group.
func (group *DeviceGroup) AddressCount() int {
	count := 0
	for _, iface := range group.Interfaces {
		count += len(iface.AddressIDs)
	}
	return count
}

// memberName names stack members hostname-1, hostname-2, ...
func memberName(hostname string, index int, isChassis bool) string {
	if !isChassis {
		return hostname
	}
	return fmt.Sprintf("%v-%v", hostname, index+1)
}

// buildChassis creates the devices for the entries, linking them into a virtual chassis when there are several.
func (session *Session) buildChassis(ctx context.Context, hostname string, entries []InventoryEntry, role string) (*DeviceGroup, error) {
	if len(entries) == 0 {
		return nil, errors.New("no inventory entries")
	}

	for _, entry := range entries {
		if _, err := session.ensureDeviceType(ctx, entry); err != nil {
			return nil, err
		}
	}
	roleID, ok := session.cache.DeviceRole(role)
	if !ok {
		return nil, errors.Errorf("device role %v not found", role)
	}

	group := &DeviceGroup{
		Hostname: hostname,
		Role:     role,
	}
	isChassis := len(entries) > 1
	for i, entry := range entries {
		name := memberName(hostname, i, isChassis)
		deviceTypeID, _ := session.cache.DeviceType(entry.Model)
		device, err := session.remote.CreateDevice(ctx, netbox.DeviceRequest{
			Name:       name,
			DeviceType: deviceTypeID,
			DeviceRole: roleID,
			Site:       session.cache.SiteID,
			Serial:     entry.Serial,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create device %v", name)
		}
		session.created(EntityDevice, log.Fields{"device": name, "serial": entry.Serial, "id": device.ID})
		member := Member{ID: device.ID, Name: name, Serial: entry.Serial}

		if isChassis {
			if i == 0 {
				virtualChassis, err := session.remote.CreateVirtualChassis(ctx, netbox.VirtualChassisRequest{
					Name:   hostname,
					Master: device.ID,
				})
				if err != nil {
					return nil, errors.Wrapf(err, "failed to create virtual chassis %v", hostname)
				}
				group.VirtualChassisID = virtualChassis.ID
				session.created(EntityVirtualChassis, log.Fields{"virtual_chassis": hostname, "master": device.ID, "id": virtualChassis.ID})
			}

			virtualChassisID := group.VirtualChassisID
			position := i + 1
			if _, err := session.remote.UpdateDevice(ctx, device.ID, netbox.DevicePatch{
				VirtualChassis: &virtualChassisID,
				VCPosition:     &position,
			}); err != nil {
				return nil, errors.Wrapf(err, "failed to add device %v to virtual chassis", name)
			}
			member.Position = position
		}

		group.Members = append(group.Members, member)
	}

	return group, nil
}
