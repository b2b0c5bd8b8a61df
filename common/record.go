package common

import (
	"net/netip"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"dev.hon.one/nbsync/util"
)

// DeviceRecord - Collected facts and interface data for one logical device.
type DeviceRecord struct {
	Facts      Facts      `yaml:"facts"`
	Interfaces Interfaces `yaml:"interfaces"`
}

// Facts - Device facts. Unused fact keys are ignored.
type Facts struct {
	Hostname  string          `yaml:"hostname"`
	Inventory []InventoryItem `yaml:"inventory"`
}

// InventoryItem - One physical chassis member.
type InventoryItem struct {
	Model  string
	Serial string
}

// Interface - An interface and its IPv4 addresses, in input order.
type Interface struct {
	Name      string
	Addresses []Address
}

// Address - An IPv4 address with prefix length.
type Address struct {
	IP           netip.Addr
	PrefixLength int
}

// Interfaces - Interfaces in input order.
type Interfaces []Interface

type addressMapping []Address

// Hostname - Lower-cased hostname, used for matching and naming.
func (record DeviceRecord) Hostname() string {
	return strings.ToLower(record.Facts.Hostname)
}

// Prefix - The address with its prefix length, host bits kept.
func (address Address) Prefix() netip.Prefix {
	return netip.PrefixFrom(address.IP, address.PrefixLength)
}

// Network - The containing network, host bits zeroed.
func (address Address) Network() netip.Prefix {
	return address.Prefix().Masked()
}

// UnmarshalYAML - Decode a [model, serial] pair.
func (item *InventoryItem) UnmarshalYAML(node *yaml.Node) error {
	var pair []string
	if err := node.Decode(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return errors.Errorf("line %v: inventory item must be a [model, serial] pair", node.Line)
	}
	item.Model = pair[0]
	item.Serial = pair[1]
	return nil
}

// UnmarshalYAML - Decode the interface mapping, keeping the document order.
func (interfaces *Interfaces) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %v: interfaces must be a mapping", node.Line)
	}
	result := make(Interfaces, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var body struct {
			IPv4 addressMapping `yaml:"ipv4"`
		}
		if err := node.Content[i+1].Decode(&body); err != nil {
			return errors.Wrapf(err, "interface %v", name)
		}
		result = append(result, Interface{
			Name:      name,
			Addresses: []Address(body.IPv4),
		})
	}
	*interfaces = result
	return nil
}

// UnmarshalYAML - Decode the address mapping, keeping the document order.
func (addresses *addressMapping) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %v: ipv4 must be a mapping", node.Line)
	}
	result := make(addressMapping, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		rawAddress := node.Content[i].Value
		ip, err := netip.ParseAddr(rawAddress)
		if err != nil {
			return errors.Wrapf(err, "line %v", node.Content[i].Line)
		}
		if !ip.Is4() {
			return errors.Errorf("line %v: not an IPv4 address: %v", node.Content[i].Line, rawAddress)
		}
		var attributes struct {
			PrefixLength *int `yaml:"prefix_length"`
		}
		if err := node.Content[i+1].Decode(&attributes); err != nil {
			return errors.Wrapf(err, "address %v", rawAddress)
		}
		if attributes.PrefixLength == nil {
			return errors.Errorf("line %v: prefix length missing for %v", node.Content[i].Line, rawAddress)
		}
		if *attributes.PrefixLength < 0 || *attributes.PrefixLength > 32 {
			return errors.Errorf("line %v: prefix length out of range for %v", node.Content[i].Line, rawAddress)
		}
		result = append(result, Address{IP: ip, PrefixLength: *attributes.PrefixLength})
	}
	*addresses = result
	return nil
}

// ParseRecords - Parse and check a YAML document of device records.
func ParseRecords(data []byte) ([]DeviceRecord, error) {
	var records []DeviceRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "failed to parse device records")
	}
	if err := checkRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadRecords - Load device records from file.
func LoadRecords(path string) ([]DeviceRecord, error) {
	var records []DeviceRecord
	if err := util.ParseYAMLFile(&records, path); err != nil {
		return nil, err
	}
	if err := checkRecords(records); err != nil {
		return nil, errors.Wrap(err, path)
	}

	log.WithFields(log.Fields{
		"input_path":   path,
		"record_count": len(records),
	}).Info("Loaded device records")

	return records, nil
}

func checkRecords(records []DeviceRecord) error {
	for i, record := range records {
		if record.Facts.Hostname == "" {
			return errors.Errorf("record %v: hostname missing", i)
		}
		if len(record.Facts.Inventory) == 0 {
			return errors.Errorf("record %v (%v): inventory empty", i, record.Facts.Hostname)
		}
	}
	return nil
}
