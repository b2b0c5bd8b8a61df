package netbox

// Local views of the NetBox objects, holding only the fields the reconciler
// uses. The client converts to and from the library models.

// Manufacturer - dcim.manufacturer.
type Manufacturer struct {
	ID   int
	Name string
	Slug string
}

// Site - dcim.site.
type Site struct {
	ID   int
	Name string
	Slug string
}

// DeviceRole - dcim.devicerole.
type DeviceRole struct {
	ID     int
	Name   string
	Slug   string
	Color  string
	VMRole bool
}

// DeviceType - dcim.devicetype.
type DeviceType struct {
	ID    int
	Model string
	Slug  string
}

// DeviceTypeRequest - Payload for creating a device type.
type DeviceTypeRequest struct {
	Manufacturer int
	Model        string
	Slug         string
}

// Device - dcim.device.
type Device struct {
	ID     int
	Name   string
	Serial string
}

// DeviceRequest - Payload for creating a device.
type DeviceRequest struct {
	Name       string
	DeviceType int
	DeviceRole int
	Site       int
	Serial     string
}

// DevicePatch - Partial device update. Nil fields are left unchanged.
type DevicePatch struct {
	VirtualChassis *int
	VCPosition     *int
	PrimaryIP4     *int
}

// VirtualChassis - dcim.virtualchassis.
type VirtualChassis struct {
	ID   int
	Name string
}

// VirtualChassisRequest - Payload for creating a virtual chassis.
type VirtualChassisRequest struct {
	Name   string
	Master int
}

// Interface - dcim.interface.
type Interface struct {
	ID   int
	Name string
}

// InterfaceRequest - Payload for creating an interface.
type InterfaceRequest struct {
	Device  int
	Name    string
	Type    string
	Enabled bool
}

// VLAN - ipam.vlan.
type VLAN struct {
	ID   int
	VID  int
	Name string
}

// Prefix - ipam.prefix.
type Prefix struct {
	ID     int
	Prefix string
}

// PrefixRequest - Payload for creating a prefix.
type PrefixRequest struct {
	Prefix string
	Status string
	IsPool bool
	VLAN   *int
}

// IPAddress - ipam.ipaddress.
type IPAddress struct {
	ID      int
	Address string
}

// IPAddressRequest - Payload for creating an IP address assigned to an interface.
type IPAddressRequest struct {
	Address            string
	Status             string
	AssignedObjectType string
	AssignedObjectID   int
}

// Status and object type values.
const (
	StatusActive            = "active"
	ObjectTypeDCIMInterface = "dcim.interface"
)
