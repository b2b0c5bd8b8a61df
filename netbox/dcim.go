package netbox

import (
	"context"
	"net/http"

	nb "github.com/netbox-community/go-netbox/v4"
	log "github.com/sirupsen/logrus"
)

const (
	opManufacturers  = "dcim/manufacturers"
	opSites          = "dcim/sites"
	opDeviceRoles    = "dcim/device-roles"
	opDeviceTypes    = "dcim/device-types"
	opDevices        = "dcim/devices"
	opVirtualChassis = "dcim/virtual-chassis"
	opInterfaces     = "dcim/interfaces"
)

// ListManufacturers - All manufacturers.
func (c *Client) ListManufacturers(ctx context.Context) ([]Manufacturer, error) {
	items, err := listAll(opManufacturers, func(limit int32, offset int32) ([]nb.Manufacturer, int32, *http.Response, error) {
		page, response, err := c.api.DcimAPI.DcimManufacturersList(ctx).Limit(limit).Offset(offset).Execute()
		if err != nil {
			return nil, 0, response, err
		}
		return page.Results, page.Count, response, nil
	})
	if err != nil {
		return nil, err
	}
	manufacturers := make([]Manufacturer, 0, len(items))
	for _, item := range items {
		manufacturers = append(manufacturers, Manufacturer{ID: int(item.GetId()), Name: item.GetName(), Slug: item.GetSlug()})
	}
	return manufacturers, nil
}

// CreateManufacturer - Create a manufacturer.
func (c *Client) CreateManufacturer(ctx context.Context, manufacturer Manufacturer) (*Manufacturer, error) {
	logWrite(http.MethodPost, opManufacturers, log.Fields{"name": manufacturer.Name})
	request := nb.NewManufacturerRequest(manufacturer.Name, manufacturer.Slug)
	created, response, err := c.api.DcimAPI.DcimManufacturersCreate(ctx).ManufacturerRequest(*request).Execute()
	if err != nil {
		return nil, wrapError(err, response, http.MethodPost, opManufacturers)
	}
	return &Manufacturer{ID: int(created.GetId()), Name: created.GetName(), Slug: created.GetSlug()}, nil
}

// FindSite - The site with the exact name, or nil if there is none.
func (c *Client) FindSite(ctx context.Context, name string) (*Site, error) {
	items, err := listAll(opSites, func(limit int32, offset int32) ([]nb.Site, int32, *http.Response, error) {
		page, response, err := c.api.DcimAPI.DcimSitesList(ctx).Name([]string{name}).Limit(limit).Offset(offset).Execute()
		if err != nil {
			return nil, 0, response, err
		}
		return page.Results, page.Count, response, nil
	})
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.GetName() == name {
			return &Site{ID: int(item.GetId()), Name: item.GetName(), Slug: item.GetSlug()}, nil
		}
	}
	return nil, nil
}

// CreateSite - Create a site.
func (c *Client) CreateSite(ctx context.Context, site Site) (*Site, error) {
	logWrite(http.MethodPost, opSites, log.Fields{"name": site.Name})
	request := nb.NewWritableSiteRequest(site.Name, site.Slug)
	created, response, err := c.api.DcimAPI.DcimSitesCreate(ctx).WritableSiteRequest(*request).Execute()
	if err != nil {
		return nil, wrapError(err, response, http.MethodPost, opSites)
	}
	return &Site{ID: int(created.GetId()), Name: created.GetName(), Slug: created.GetSlug()}, nil
}

// ListDeviceRoles - All device roles.
func (c *Client) ListDeviceRoles(ctx context.Context) ([]DeviceRole, error) {
	items, err := listAll(opDeviceRoles, func(limit int32, offset int32) ([]nb.DeviceRole, int32, *http.Response, error) {
		page, response, err := c.api.DcimAPI.DcimDeviceRolesList(ctx).Limit(limit).Offset(offset).Execute()
		if err != nil {
			return nil, 0, response, err
		}
		return page.Results, page.Count, response, nil
	})
	if err != nil {
		return nil, err
	}
	roles := make([]DeviceRole, 0, len(items))
	for _, item := range items {
		roles = append(roles, fromDeviceRole(item))
	}
	return roles, nil
}

// CreateDeviceRoles - Create several device roles, one request each.
// Roles created before a failure are not returned.
func (c *Client) CreateDeviceRoles(ctx context.Context, roles []DeviceRole) ([]DeviceRole, error) {
	created := make([]DeviceRole, 0, len(roles))
	for _, role := range roles {
		logWrite(http.MethodPost, opDeviceRoles, log.Fields{"name": role.Name})
		request := nb.NewDeviceRoleRequest(role.Name, role.Slug)
		request.SetColor(role.Color)
		request.SetVmRole(role.VMRole)
		item, response, err := c.api.DcimAPI.DcimDeviceRolesCreate(ctx).DeviceRoleRequest(*request).Execute()
		if err != nil {
			return nil, wrapError(err, response, http.MethodPost, opDeviceRoles)
		}
		created = append(created, fromDeviceRole(*item))
	}
	return created, nil
}

func fromDeviceRole(item nb.DeviceRole) DeviceRole {
	return DeviceRole{
		ID:     int(item.GetId()),
		Name:   item.GetName(),
		Slug:   item.GetSlug(),
		Color:  item.GetColor(),
		VMRole: item.GetVmRole(),
	}
}

// ListDeviceTypes - All device types.
func (c *Client) ListDeviceTypes(ctx context.Context) ([]DeviceType, error) {
	items, err := listAll(opDeviceTypes, func(limit int32, offset int32) ([]nb.DeviceType, int32, *http.Response, error) {
		page, response, err := c.api.DcimAPI.DcimDeviceTypesList(ctx).Limit(limit).Offset(offset).Execute()
		if err != nil {
			return nil, 0, response, err
		}
		return page.Results, page.Count, response, nil
	})
	if err != nil {
		return nil, err
	}
	deviceTypes := make([]DeviceType, 0, len(items))
	for _, item := range items {
		deviceTypes = append(deviceTypes, DeviceType{ID: int(item.GetId()), Model: item.GetModel(), Slug: item.GetSlug()})
	}
	return deviceTypes, nil
}

// CreateDeviceType - Create a device type.
func (c *Client) CreateDeviceType(ctx context.Context, deviceType DeviceTypeRequest) (*DeviceType, error) {
	logWrite(http.MethodPost, opDeviceTypes, log.Fields{"model": deviceType.Model, "manufacturer": deviceType.Manufacturer})
	request := nb.NewWritableDeviceTypeRequest(
		nb.Int32AsBriefDeviceTypeRequestManufacturer(ref(deviceType.Manufacturer)),
		deviceType.Model,
		deviceType.Slug,
	)
	created, response, err := c.api.DcimAPI.DcimDeviceTypesCreate(ctx).WritableDeviceTypeRequest(*request).Execute()
	if err != nil {
		return nil, wrapError(err, response, http.MethodPost, opDeviceTypes)
	}
	return &DeviceType{ID: int(created.GetId()), Model: created.GetModel(), Slug: created.GetSlug()}, nil
}

// CreateDevice - Create a device.
func (c *Client) CreateDevice(ctx context.Context, device DeviceRequest) (*Device, error) {
	logWrite(http.MethodPost, opDevices, log.Fields{"name": device.Name, "serial": device.Serial})
	request := nb.NewWritableDeviceWithConfigContextRequest(
		nb.Int32AsDeviceBayTemplateRequestDeviceType(ref(device.DeviceType)),
		nb.Int32AsDeviceWithConfigContextRequestRole(ref(device.DeviceRole)),
		nb.Int32AsDeviceWithConfigContextRequestSite(ref(device.Site)),
	)
	request.SetName(device.Name)
	request.SetSerial(device.Serial)
	created, response, err := c.api.DcimAPI.DcimDevicesCreate(ctx).WritableDeviceWithConfigContextRequest(*request).Execute()
	if err != nil {
		return nil, wrapError(err, response, http.MethodPost, opDevices)
	}
	return &Device{ID: int(created.GetId()), Name: created.GetName(), Serial: created.GetSerial()}, nil
}

// UpdateDevice - Patch a device.
func (c *Client) UpdateDevice(ctx context.Context, id int, patch DevicePatch) (*Device, error) {
	// Only the set references are sent, as plain IDs
	fields := make(map[string]interface{})
	if patch.VirtualChassis != nil {
		fields["virtual_chassis"] = *patch.VirtualChassis
	}
	if patch.VCPosition != nil {
		fields["vc_position"] = *patch.VCPosition
	}
	if patch.PrimaryIP4 != nil {
		fields["primary_ip4"] = *patch.PrimaryIP4
	}
	logWrite(http.MethodPatch, opDevices, log.Fields{"id": id, "fields": len(fields)})
	request := nb.PatchedWritableDeviceWithConfigContextRequest{AdditionalProperties: fields}
	updated, response, err := c.api.DcimAPI.DcimDevicesPartialUpdate(ctx, int32(id)).PatchedWritableDeviceWithConfigContextRequest(request).Execute()
	if err != nil {
		return nil, wrapError(err, response, http.MethodPatch, opDevices)
	}
	return &Device{ID: int(updated.GetId()), Name: updated.GetName(), Serial: updated.GetSerial()}, nil
}

// CreateVirtualChassis - Create a virtual chassis.
func (c *Client) CreateVirtualChassis(ctx context.Context, virtualChassis VirtualChassisRequest) (*VirtualChassis, error) {
	logWrite(http.MethodPost, opVirtualChassis, log.Fields{"name": virtualChassis.Name, "master": virtualChassis.Master})
	request := nb.NewWritableVirtualChassisRequest(virtualChassis.Name)
	request.AdditionalProperties = map[string]interface{}{"master": virtualChassis.Master}
	created, response, err := c.api.DcimAPI.DcimVirtualChassisCreate(ctx).WritableVirtualChassisRequest(*request).Execute()
	if err != nil {
		return nil, wrapError(err, response, http.MethodPost, opVirtualChassis)
	}
	return &VirtualChassis{ID: int(created.GetId()), Name: created.GetName()}, nil
}

// CreateInterface - Create a device interface.
func (c *Client) CreateInterface(ctx context.Context, iface InterfaceRequest) (*Interface, error) {
	logWrite(http.MethodPost, opInterfaces, log.Fields{"name": iface.Name, "device": iface.Device, "type": iface.Type})
	request := nb.NewWritableInterfaceRequest(
		nb.Int32AsBriefInterfaceRequestDevice(ref(iface.Device)),
		iface.Name,
		nb.InterfaceTypeValue(iface.Type),
	)
	request.SetEnabled(iface.Enabled)
	created, response, err := c.api.DcimAPI.DcimInterfacesCreate(ctx).WritableInterfaceRequest(*request).Execute()
	if err != nil {
		return nil, wrapError(err, response, http.MethodPost, opInterfaces)
	}
	return &Interface{ID: int(created.GetId()), Name: created.GetName()}, nil
}

// ref converts a local ID to the library's reference form.
func ref(id int) *int32 {
	value := int32(id)
	return &value
}
