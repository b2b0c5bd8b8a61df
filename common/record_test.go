package common

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecords = `
- facts:
    fqdn: Elem_IK_AccSW_7.elem.ru
    hostname: Elem_IK_AccSW_7
    inventory:
      - - WS-C2960-8TC-L
        - FOC1532W3JC
    os_version: c2960-lanbasek9-mz.122-50.SE5.bin
    uptime: 36717300
    vendor: Cisco
  interfaces:
    Vlan301:
      ipv4:
        172.30.22.7:
          prefix_length: 18
    Vlan130:
      ipv4:
        10.1.0.1:
          prefix_length: 24
        10.1.1.1:
          prefix_length: 24
    GigabitEthernet0/1:
      ipv4: {}
`

func TestParseRecords(t *testing.T) {
	records, err := ParseRecords([]byte(sampleRecords))
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "elem_ik_accsw_7", record.Hostname())
	assert.Equal(t, []InventoryItem{{Model: "WS-C2960-8TC-L", Serial: "FOC1532W3JC"}}, record.Facts.Inventory)

	require.Len(t, record.Interfaces, 3)
	assert.Equal(t, "Vlan301", record.Interfaces[0].Name)
	assert.Equal(t, "Vlan130", record.Interfaces[1].Name)
	assert.Equal(t, "GigabitEthernet0/1", record.Interfaces[2].Name)
	assert.Empty(t, record.Interfaces[2].Addresses)

	addresses := record.Interfaces[1].Addresses
	require.Len(t, addresses, 2)
	assert.Equal(t, netip.MustParseAddr("10.1.0.1"), addresses[0].IP)
	assert.Equal(t, netip.MustParseAddr("10.1.1.1"), addresses[1].IP)
	assert.Equal(t, 24, addresses[1].PrefixLength)
}

func TestAddressNetwork(t *testing.T) {
	address := Address{IP: netip.MustParseAddr("172.30.22.7"), PrefixLength: 18}
	assert.Equal(t, "172.30.22.7/18", address.Prefix().String())
	assert.Equal(t, "172.30.0.0/18", address.Network().String())
}

func TestParseRecordsRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"bad address": `
- facts: {hostname: a, inventory: [[m, s]]}
  interfaces: {Vlan1: {ipv4: {300.1.1.1: {prefix_length: 24}}}}`,
		"ipv6 address": `
- facts: {hostname: a, inventory: [[m, s]]}
  interfaces: {Vlan1: {ipv4: {"2001:db8::1": {prefix_length: 64}}}}`,
		"missing prefix length": `
- facts: {hostname: a, inventory: [[m, s]]}
  interfaces: {Vlan1: {ipv4: {10.0.0.1: {}}}}`,
		"prefix length out of range": `
- facts: {hostname: a, inventory: [[m, s]]}
  interfaces: {Vlan1: {ipv4: {10.0.0.1: {prefix_length: 33}}}}`,
		"inventory triple": `
- facts: {hostname: a, inventory: [[m, s, x]]}`,
		"missing hostname": `
- facts: {inventory: [[m, s]]}`,
		"empty inventory": `
- facts: {hostname: a, inventory: []}`,
	}
	for name, document := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRecords([]byte(document))
			assert.Error(t, err)
		})
	}
}

func TestLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRecords), 0o644))

	records, err := LoadRecords(path)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = LoadRecords(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
