package netbox

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// DryRun - Client wrapper which reads from NetBox but only logs writes.
// Created objects get negative IDs so they are never confused with real ones.
type DryRun struct {
	*Client
	lastID int
}

// NewDryRun - Wrap a client for dry runs.
func NewDryRun(client *Client) *DryRun {
	return &DryRun{Client: client}
}

func (d *DryRun) nextID(kind string, fields log.Fields) int {
	d.lastID--
	fields["id"] = d.lastID
	log.WithFields(fields).Infof("Dry run: would create %v", kind)
	return d.lastID
}

// CreateManufacturer - Log and fake.
func (d *DryRun) CreateManufacturer(_ context.Context, manufacturer Manufacturer) (*Manufacturer, error) {
	manufacturer.ID = d.nextID("manufacturer", log.Fields{"name": manufacturer.Name})
	return &manufacturer, nil
}

// CreateSite - Log and fake.
func (d *DryRun) CreateSite(_ context.Context, site Site) (*Site, error) {
	site.ID = d.nextID("site", log.Fields{"name": site.Name})
	return &site, nil
}

// CreateDeviceRoles - Log and fake.
func (d *DryRun) CreateDeviceRoles(_ context.Context, roles []DeviceRole) ([]DeviceRole, error) {
	created := make([]DeviceRole, 0, len(roles))
	for _, role := range roles {
		role.ID = d.nextID("device role", log.Fields{"name": role.Name})
		created = append(created, role)
	}
	return created, nil
}

// CreateDeviceType - Log and fake.
func (d *DryRun) CreateDeviceType(_ context.Context, deviceType DeviceTypeRequest) (*DeviceType, error) {
	id := d.nextID("device type", log.Fields{"model": deviceType.Model, "slug": deviceType.Slug})
	return &DeviceType{ID: id, Model: deviceType.Model, Slug: deviceType.Slug}, nil
}

// CreateDevice - Log and fake.
func (d *DryRun) CreateDevice(_ context.Context, device DeviceRequest) (*Device, error) {
	id := d.nextID("device", log.Fields{"name": device.Name, "serial": device.Serial})
	return &Device{ID: id, Name: device.Name, Serial: device.Serial}, nil
}

// UpdateDevice - Log only.
func (d *DryRun) UpdateDevice(_ context.Context, id int, patch DevicePatch) (*Device, error) {
	fields := log.Fields{"id": id}
	if patch.VirtualChassis != nil {
		fields["virtual_chassis"] = *patch.VirtualChassis
	}
	if patch.VCPosition != nil {
		fields["vc_position"] = *patch.VCPosition
	}
	if patch.PrimaryIP4 != nil {
		fields["primary_ip4"] = *patch.PrimaryIP4
	}
	log.WithFields(fields).Info("Dry run: would update device")
	return &Device{ID: id}, nil
}

// CreateVirtualChassis - Log and fake.
func (d *DryRun) CreateVirtualChassis(_ context.Context, virtualChassis VirtualChassisRequest) (*VirtualChassis, error) {
	id := d.nextID("virtual chassis", log.Fields{"name": virtualChassis.Name, "master": virtualChassis.Master})
	return &VirtualChassis{ID: id, Name: virtualChassis.Name}, nil
}

// CreateInterface - Log and fake.
func (d *DryRun) CreateInterface(_ context.Context, iface InterfaceRequest) (*Interface, error) {
	id := d.nextID("interface", log.Fields{"name": iface.Name, "device": iface.Device, "type": iface.Type})
	return &Interface{ID: id, Name: iface.Name}, nil
}

// CreateVLAN - Log and fake.
func (d *DryRun) CreateVLAN(_ context.Context, vlan VLAN) (*VLAN, error) {
	vlan.ID = d.nextID("VLAN", log.Fields{"vid": vlan.VID, "name": vlan.Name})
	return &vlan, nil
}

// CreatePrefix - Log and fake.
func (d *DryRun) CreatePrefix(_ context.Context, prefix PrefixRequest) (*Prefix, error) {
	fields := log.Fields{"prefix": prefix.Prefix}
	if prefix.VLAN != nil {
		fields["vlan"] = *prefix.VLAN
	}
	id := d.nextID("prefix", fields)
	return &Prefix{ID: id, Prefix: prefix.Prefix}, nil
}

// CreateIPAddress - Log and fake.
func (d *DryRun) CreateIPAddress(_ context.Context, address IPAddressRequest) (*IPAddress, error) {
	id := d.nextID("IP address", log.Fields{"address": address.Address, "interface": address.AssignedObjectID})
	return &IPAddress{ID: id, Address: address.Address}, nil
}
