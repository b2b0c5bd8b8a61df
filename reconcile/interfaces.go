package reconcile

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"dev.hon.one/nbsync/common"
	"dev.hon.one/nbsync/netbox"
)

// InterfaceKind - NetBox interface type.
type InterfaceKind string

// Interface kinds.
const (
	InterfaceVirtual       InterfaceKind = "virtual"
	InterfaceGigabitSFP    InterfaceKind = "1000base-x-sfp"
	InterfaceTenGigabitSFP InterfaceKind = "10gbase-x-sfpp"
)

var interfaceKindPrefixes = []struct {
	prefix string
	kind   InterfaceKind
}{
	{"Vl", InterfaceVirtual},
	{"Gi", InterfaceGigabitSFP},
	{"Te", InterfaceTenGigabitSFP},
}

// VLAN interface names are "Vlan<vid>".
const vlanInterfacePrefix = "Vlan"

// Interface name suffixes marking the management interface.
var primaryInterfaceSuffixes = []string{"130", "300", "301", "302", "303"}

// SyncedInterface - A created interface and the addresses created on it.
type SyncedInterface struct {
	ID         int
	Name       string
	Kind       InterfaceKind
	AddressIDs []int
}

// ClassifyInterface - Interface kind from the name prefix.
func ClassifyInterface(name string) (InterfaceKind, error) {
	for _, candidate := range interfaceKindPrefixes {
		if strings.HasPrefix(name, candidate.prefix) {
			return candidate.kind, nil
		}
	}
	return "", &UnclassifiedInterfaceError{Name: name}
}

// VLANIDFromInterface - VLAN ID from a "Vlan<vid>" interface name.
func VLANIDFromInterface(name string) (int, error) {
	vid, err := strconv.Atoi(strings.TrimPrefix(name, vlanInterfacePrefix))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid VLAN interface name %v", name)
	}
	return vid, nil
}

// IsPrimaryAddressCandidate - If an address on the interface should become the primary IPv4:
// the name has a management suffix or the interface has exactly one address.
func IsPrimaryAddressCandidate(name string, addressCount int) bool {
	if addressCount == 1 {
		return true
	}
	for _, suffix := range primaryInterfaceSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// syncInterfaces creates the interfaces and addresses on the group's primary member.
func (session *Session) syncInterfaces(ctx context.Context, group *DeviceGroup, interfaces common.Interfaces) error {
	primary := group.Primary()
	for _, iface := range interfaces {
		kind, err := ClassifyInterface(iface.Name)
		if err != nil {
			return err
		}
		created, err := session.remote.CreateInterface(ctx, netbox.InterfaceRequest{
			Device:  primary.ID,
			Name:    iface.Name,
			Type:    string(kind),
			Enabled: true,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to create interface %v", iface.Name)
		}
		session.created(EntityInterface, log.Fields{"device": primary.Name, "interface": iface.Name, "type": kind, "id": created.ID})
		synced := SyncedInterface{ID: created.ID, Name: iface.Name, Kind: kind}

		for _, address := range iface.Addresses {
			if err := session.ensurePrefix(ctx, iface.Name, address); err != nil {
				return err
			}

			addressValue := address.Prefix().String()
			ipAddress, err := session.remote.CreateIPAddress(ctx, netbox.IPAddressRequest{
				Address:            addressValue,
				Status:             netbox.StatusActive,
				AssignedObjectType: netbox.ObjectTypeDCIMInterface,
				AssignedObjectID:   created.ID,
			})
			if err != nil {
				return errors.Wrapf(err, "failed to create IP address %v", addressValue)
			}
			session.created(EntityIPAddress, log.Fields{"interface": iface.Name, "address": addressValue, "id": ipAddress.ID})
			synced.AddressIDs = append(synced.AddressIDs, ipAddress.ID)

			// Several candidates may match per device, the last one wins
			if IsPrimaryAddressCandidate(iface.Name, len(iface.Addresses)) {
				addressID := ipAddress.ID
				if _, err := session.remote.UpdateDevice(ctx, primary.ID, netbox.DevicePatch{PrimaryIP4: &addressID}); err != nil {
					return errors.Wrapf(err, "failed to set primary IPv4 %v on %v", addressValue, primary.Name)
				}
				group.PrimaryIPv4ID = addressID
				log.WithFields(log.Fields{
					"device":  primary.Name,
					"address": addressValue,
				}).Trace("Set primary IPv4")
			}
		}

		group.Interfaces = append(group.Interfaces, synced)
	}
	return nil
}

// ensurePrefix creates the address's network as a prefix unless it is known or a host route.
// Prefixes on VLAN interfaces are linked to the VLAN, which is created if needed.
func (session *Session) ensurePrefix(ctx context.Context, interfaceName string, address common.Address) error {
	network := address.Network()
	if network.Bits() == 32 {
		return nil
	}
	cidr := network.String()
	if session.cache.HasPrefix(cidr) {
		session.reused(EntityPrefix)
		return nil
	}

	request := netbox.PrefixRequest{
		Prefix: cidr,
		Status: netbox.StatusActive,
		IsPool: false,
	}
	if strings.HasPrefix(interfaceName, vlanInterfacePrefix) {
		vlanID, err := session.ensureVLAN(ctx, interfaceName)
		if err != nil {
			return err
		}
		request.VLAN = &vlanID
	}

	prefix, err := session.remote.CreatePrefix(ctx, request)
	if err != nil {
		return errors.Wrapf(err, "failed to create prefix %v", cidr)
	}
	session.cache.prefixes[cidr] = struct{}{}
	session.created(EntityPrefix, log.Fields{"prefix": cidr, "id": prefix.ID})
	return nil
}
