package reconcile

import (
	"context"

	"dev.hon.one/nbsync/netbox"
)

// ManufacturerRepository - Manufacturer reads and creates.
type ManufacturerRepository interface {
	ListManufacturers(ctx context.Context) ([]netbox.Manufacturer, error)
	CreateManufacturer(ctx context.Context, manufacturer netbox.Manufacturer) (*netbox.Manufacturer, error)
}

// SiteRepository - Site lookup by name and creates.
type SiteRepository interface {
	FindSite(ctx context.Context, name string) (*netbox.Site, error)
	CreateSite(ctx context.Context, site netbox.Site) (*netbox.Site, error)
}

// DeviceRoleRepository - Device role reads and batch creates.
type DeviceRoleRepository interface {
	ListDeviceRoles(ctx context.Context) ([]netbox.DeviceRole, error)
	CreateDeviceRoles(ctx context.Context, roles []netbox.DeviceRole) ([]netbox.DeviceRole, error)
}

// DeviceTypeRepository - Device type reads and creates.
type DeviceTypeRepository interface {
	ListDeviceTypes(ctx context.Context) ([]netbox.DeviceType, error)
	CreateDeviceType(ctx context.Context, deviceType netbox.DeviceTypeRequest) (*netbox.DeviceType, error)
}

// DeviceRepository - Device creates and follow-up updates.
type DeviceRepository interface {
	CreateDevice(ctx context.Context, device netbox.DeviceRequest) (*netbox.Device, error)
	UpdateDevice(ctx context.Context, id int, patch netbox.DevicePatch) (*netbox.Device, error)
}

// VirtualChassisRepository - Virtual chassis creates.
type VirtualChassisRepository interface {
	CreateVirtualChassis(ctx context.Context, virtualChassis netbox.VirtualChassisRequest) (*netbox.VirtualChassis, error)
}

// InterfaceRepository - Interface creates.
type InterfaceRepository interface {
	CreateInterface(ctx context.Context, iface netbox.InterfaceRequest) (*netbox.Interface, error)
}

// VLANRepository - VLAN reads and creates.
type VLANRepository interface {
	ListVLANs(ctx context.Context) ([]netbox.VLAN, error)
	CreateVLAN(ctx context.Context, vlan netbox.VLAN) (*netbox.VLAN, error)
}

// PrefixRepository - Prefix reads and creates.
type PrefixRepository interface {
	ListPrefixes(ctx context.Context) ([]netbox.Prefix, error)
	CreatePrefix(ctx context.Context, prefix netbox.PrefixRequest) (*netbox.Prefix, error)
}

// IPAddressRepository - IP address creates.
type IPAddressRepository interface {
	CreateIPAddress(ctx context.Context, address netbox.IPAddressRequest) (*netbox.IPAddress, error)
}

// Remote - Everything the reconciler needs from the source of truth.
type Remote interface {
	ManufacturerRepository
	SiteRepository
	DeviceRoleRepository
	DeviceTypeRepository
	DeviceRepository
	VirtualChassisRepository
	InterfaceRepository
	VLANRepository
	PrefixRepository
	IPAddressRepository
}

var (
	_ Remote = (*netbox.Client)(nil)
	_ Remote = (*netbox.DryRun)(nil)
)
