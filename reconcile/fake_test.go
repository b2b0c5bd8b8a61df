package reconcile

import (
	"context"
	"net/netip"

	"github.com/pkg/errors"

	"dev.hon.one/nbsync/common"
	"dev.hon.one/nbsync/netbox"
)

type devicePatchCall struct {
	ID    int
	Patch netbox.DevicePatch
}

// fakeRemote - In-memory remote recording every write.
type fakeRemote struct {
	nextID int

	site          *netbox.Site
	manufacturers []netbox.Manufacturer
	roles         []netbox.DeviceRole
	deviceTypes   []netbox.DeviceType
	vlans         []netbox.VLAN
	prefixes      []netbox.Prefix

	createdSites          []netbox.Site
	createdManufacturers  []netbox.Manufacturer
	createdRoleBatches    [][]netbox.DeviceRole
	createdDeviceTypes    []netbox.DeviceTypeRequest
	createdDevices        []netbox.DeviceRequest
	devicePatches         []devicePatchCall
	createdVirtualChassis []netbox.VirtualChassisRequest
	createdInterfaces     []netbox.InterfaceRequest
	createdVLANs          []netbox.VLAN
	createdPrefixes       []netbox.PrefixRequest
	createdAddresses      []netbox.IPAddressRequest

	// Fails the call with this name, if set
	failOn string
}

var errFake = errors.New("fake remote failure")

func newFakeRemote() *fakeRemote {
	return &fakeRemote{nextID: 100}
}

// seededFakeRemote - Remote that already has the defaults.
func seededFakeRemote() *fakeRemote {
	remote := newFakeRemote()
	remote.site = &netbox.Site{ID: 1, Name: DefaultSiteName, Slug: DefaultSiteSlug}
	remote.manufacturers = []netbox.Manufacturer{{ID: 2, Name: DefaultManufacturerName, Slug: DefaultManufacturerSlug}}
	remote.roles = []netbox.DeviceRole{
		{ID: 11, Name: RoleAccessSwitch},
		{ID: 12, Name: RoleDistrSwitch},
		{ID: 13, Name: RoleCoreSwitch},
		{ID: 14, Name: RoleSrvSwitch},
	}
	return remote
}

func (f *fakeRemote) id() int {
	f.nextID++
	return f.nextID
}

func (f *fakeRemote) fail(name string) error {
	if f.failOn == name {
		return errFake
	}
	return nil
}

func (f *fakeRemote) ListManufacturers(context.Context) ([]netbox.Manufacturer, error) {
	return f.manufacturers, f.fail("ListManufacturers")
}

func (f *fakeRemote) CreateManufacturer(_ context.Context, manufacturer netbox.Manufacturer) (*netbox.Manufacturer, error) {
	if err := f.fail("CreateManufacturer"); err != nil {
		return nil, err
	}
	f.createdManufacturers = append(f.createdManufacturers, manufacturer)
	manufacturer.ID = f.id()
	return &manufacturer, nil
}

func (f *fakeRemote) FindSite(_ context.Context, name string) (*netbox.Site, error) {
	if err := f.fail("FindSite"); err != nil {
		return nil, err
	}
	if f.site != nil && f.site.Name == name {
		return f.site, nil
	}
	return nil, nil
}

func (f *fakeRemote) CreateSite(_ context.Context, site netbox.Site) (*netbox.Site, error) {
	if err := f.fail("CreateSite"); err != nil {
		return nil, err
	}
	f.createdSites = append(f.createdSites, site)
	site.ID = f.id()
	return &site, nil
}

func (f *fakeRemote) ListDeviceRoles(context.Context) ([]netbox.DeviceRole, error) {
	return f.roles, f.fail("ListDeviceRoles")
}

func (f *fakeRemote) CreateDeviceRoles(_ context.Context, roles []netbox.DeviceRole) ([]netbox.DeviceRole, error) {
	if err := f.fail("CreateDeviceRoles"); err != nil {
		return nil, err
	}
	f.createdRoleBatches = append(f.createdRoleBatches, roles)
	created := make([]netbox.DeviceRole, 0, len(roles))
	for _, role := range roles {
		role.ID = f.id()
		created = append(created, role)
	}
	return created, nil
}

func (f *fakeRemote) ListDeviceTypes(context.Context) ([]netbox.DeviceType, error) {
	return f.deviceTypes, f.fail("ListDeviceTypes")
}

func (f *fakeRemote) CreateDeviceType(_ context.Context, deviceType netbox.DeviceTypeRequest) (*netbox.DeviceType, error) {
	if err := f.fail("CreateDeviceType"); err != nil {
		return nil, err
	}
	f.createdDeviceTypes = append(f.createdDeviceTypes, deviceType)
	return &netbox.DeviceType{ID: f.id(), Model: deviceType.Model, Slug: deviceType.Slug}, nil
}

func (f *fakeRemote) CreateDevice(_ context.Context, device netbox.DeviceRequest) (*netbox.Device, error) {
	if err := f.fail("CreateDevice"); err != nil {
		return nil, err
	}
	f.createdDevices = append(f.createdDevices, device)
	return &netbox.Device{ID: f.id(), Name: device.Name, Serial: device.Serial}, nil
}

func (f *fakeRemote) UpdateDevice(_ context.Context, id int, patch netbox.DevicePatch) (*netbox.Device, error) {
	if err := f.fail("UpdateDevice"); err != nil {
		return nil, err
	}
	f.devicePatches = append(f.devicePatches, devicePatchCall{ID: id, Patch: patch})
	return &netbox.Device{ID: id}, nil
}

func (f *fakeRemote) CreateVirtualChassis(_ context.Context, virtualChassis netbox.VirtualChassisRequest) (*netbox.VirtualChassis, error) {
	if err := f.fail("CreateVirtualChassis"); err != nil {
		return nil, err
	}
	f.createdVirtualChassis = append(f.createdVirtualChassis, virtualChassis)
	return &netbox.VirtualChassis{ID: f.id(), Name: virtualChassis.Name}, nil
}

func (f *fakeRemote) CreateInterface(_ context.Context, iface netbox.InterfaceRequest) (*netbox.Interface, error) {
	if err := f.fail("CreateInterface"); err != nil {
		return nil, err
	}
	f.createdInterfaces = append(f.createdInterfaces, iface)
	return &netbox.Interface{ID: f.id(), Name: iface.Name}, nil
}

func (f *fakeRemote) ListVLANs(context.Context) ([]netbox.VLAN, error) {
	return f.vlans, f.fail("ListVLANs")
}

func (f *fakeRemote) CreateVLAN(_ context.Context, vlan netbox.VLAN) (*netbox.VLAN, error) {
	if err := f.fail("CreateVLAN"); err != nil {
		return nil, err
	}
	f.createdVLANs = append(f.createdVLANs, vlan)
	vlan.ID = f.id()
	return &vlan, nil
}

func (f *fakeRemote) ListPrefixes(context.Context) ([]netbox.Prefix, error) {
	return f.prefixes, f.fail("ListPrefixes")
}

func (f *fakeRemote) CreatePrefix(_ context.Context, prefix netbox.PrefixRequest) (*netbox.Prefix, error) {
	if err := f.fail("CreatePrefix"); err != nil {
		return nil, err
	}
	f.createdPrefixes = append(f.createdPrefixes, prefix)
	return &netbox.Prefix{ID: f.id(), Prefix: prefix.Prefix}, nil
}

func (f *fakeRemote) CreateIPAddress(_ context.Context, address netbox.IPAddressRequest) (*netbox.IPAddress, error) {
	if err := f.fail("CreateIPAddress"); err != nil {
		return nil, err
	}
	f.createdAddresses = append(f.createdAddresses, address)
	return &netbox.IPAddress{ID: f.id(), Address: address.Address}, nil
}

// primaryPatches - Patches setting the primary IPv4, in call order.
func (f *fakeRemote) primaryPatches() []devicePatchCall {
	var patches []devicePatchCall
	for _, call := range f.devicePatches {
		if call.Patch.PrimaryIP4 != nil {
			patches = append(patches, call)
		}
	}
	return patches
}

type countingRecorder struct {
	created map[EntityKind]int
	reused  map[EntityKind]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		created: make(map[EntityKind]int),
		reused:  make(map[EntityKind]int),
	}
}

func (r *countingRecorder) EntityCreated(kind EntityKind) { r.created[kind]++ }
func (r *countingRecorder) EntityReused(kind EntityKind) { r.reused[kind]++ }

func address(ip string, prefixLength int) common.Address {
	return common.Address{IP: netip.MustParseAddr(ip), PrefixLength: prefixLength}
}

func record(hostname string, inventory [][2]string, interfaces ...common.Interface) common.DeviceRecord {
	items := make([]common.InventoryItem, 0, len(inventory))
	for _, pair := range inventory {
		items = append(items, common.InventoryItem{Model: pair[0], Serial: pair[1]})
	}
	return common.DeviceRecord{
		Facts:      common.Facts{Hostname: hostname, Inventory: items},
		Interfaces: interfaces,
	}
}
