package netbox

import (
	"context"
	"net/http"

	nb "github.com/netbox-community/go-netbox/v4"
	log "github.com/sirupsen/logrus"
)

const (
	opVLANs       = "ipam/vlans"
	opPrefixes    = "ipam/prefixes"
	opIPAddresses = "ipam/ip-addresses"
)

// ListVLANs - All VLANs.
func (c *Client) ListVLANs(ctx context.Context) ([]VLAN, error) {
	items, err := listAll(opVLANs, func(limit int32, offset int32) ([]nb.VLAN, int32, *http.Response, error) {
		page, response, err := c.api.IpamAPI.IpamVlansList(ctx).Limit(limit).Offset(offset).Execute()
		if err != nil {
			return nil, 0, response, err
		}
		return page.Results, page.Count, response, nil
	})
	if err != nil {
		return nil, err
	}
	vlans := make([]VLAN, 0, len(items))
	for _, item := range items {
		vlans = append(vlans, VLAN{ID: int(item.GetId()), VID: int(item.GetVid()), Name: item.GetName()})
	}
	return vlans, nil
}

// CreateVLAN - Create a VLAN.
func (c *Client) CreateVLAN(ctx context.Context, vlan VLAN) (*VLAN, error) {
	logWrite(http.MethodPost, opVLANs, log.Fields{"vid": vlan.VID, "name": vlan.Name})
	request := nb.NewWritableVLANRequest(int32(vlan.VID), vlan.Name)
	created, response, err := c.api.IpamAPI.IpamVlansCreate(ctx).WritableVLANRequest(*request).Execute()
	if err != nil {
		return nil, wrapError(err, response, http.MethodPost, opVLANs)
	}
	return &VLAN{ID: int(created.GetId()), VID: int(created.GetVid()), Name: created.GetName()}, nil
}

// ListPrefixes - All prefixes.
func (c *Client) ListPrefixes(ctx context.Context) ([]Prefix, error) {
	items, err := listAll(opPrefixes, func(limit int32, offset int32) ([]nb.Prefix, int32, *http.Response, error) {
		page, response, err := c.api.IpamAPI.IpamPrefixesList(ctx).Limit(limit).Offset(offset).Execute()
		if err != nil {
			return nil, 0, response, err
		}
		return page.Results, page.Count, response, nil
	})
	if err != nil {
		return nil, err
	}
	prefixes := make([]Prefix, 0, len(items))
	for _, item := range items {
		prefixes = append(prefixes, Prefix{ID: int(item.GetId()), Prefix: item.GetPrefix()})
	}
	return prefixes, nil
}

// CreatePrefix - Create a prefix.
func (c *Client) CreatePrefix(ctx context.Context, prefix PrefixRequest) (*Prefix, error) {
	fields := log.Fields{"prefix": prefix.Prefix}
	request := nb.NewWritablePrefixRequest(prefix.Prefix)
	request.SetStatus(nb.PatchedWritablePrefixRequestStatus(prefix.Status))
	request.SetIsPool(prefix.IsPool)
	if prefix.VLAN != nil {
		fields["vlan"] = *prefix.VLAN
		request.AdditionalProperties = map[string]interface{}{"vlan": *prefix.VLAN}
	}
	logWrite(http.MethodPost, opPrefixes, fields)
	created, response, err := c.api.IpamAPI.IpamPrefixesCreate(ctx).WritablePrefixRequest(*request).Execute()
	if err != nil {
		return nil, wrapError(err, response, http.MethodPost, opPrefixes)
	}
	return &Prefix{ID: int(created.GetId()), Prefix: created.GetPrefix()}, nil
}

// CreateIPAddress - Create an IP address.
func (c *Client) CreateIPAddress(ctx context.Context, address IPAddressRequest) (*IPAddress, error) {
	logWrite(http.MethodPost, opIPAddresses, log.Fields{"address": address.Address, "interface": address.AssignedObjectID})
	request := nb.NewWritableIPAddressRequest(address.Address)
	request.SetStatus(nb.PatchedWritableIPAddressRequestStatus(address.Status))
	request.SetAssignedObjectType(address.AssignedObjectType)
	request.SetAssignedObjectId(int64(address.AssignedObjectID))
	created, response, err := c.api.IpamAPI.IpamIpAddressesCreate(ctx).WritableIPAddressRequest(*request).Execute()
	if err != nil {
		return nil, wrapError(err, response, http.MethodPost, opIPAddresses)
	}
	return &IPAddress{ID: int(created.GetId()), Address: created.GetAddress()}, nil
}
