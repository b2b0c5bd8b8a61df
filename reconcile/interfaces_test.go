package reconcile

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyInterface(t *testing.T) {
	tests := map[string]InterfaceKind{
		"Vlan301":               InterfaceVirtual,
		"GigabitEthernet1/0/1":  InterfaceGigabitSFP,
		"TenGigabitEthernet1/1": InterfaceTenGigabitSFP,
	}
	for name, expected := range tests {
		kind, err := ClassifyInterface(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, kind, name)
	}

	_, err := ClassifyInterface("Loopback0")
	var unclassified *UnclassifiedInterfaceError
	require.True(t, errors.As(err, &unclassified))
	assert.Equal(t, "Loopback0", unclassified.Name)
	assert.EqualError(t, err, "unclassified interface Loopback0")
}

func TestVLANIDFromInterface(t *testing.T) {
	vid, err := VLANIDFromInterface("Vlan301")
	require.NoError(t, err)
	assert.Equal(t, 301, vid)

	_, err = VLANIDFromInterface("Vlanx")
	assert.Error(t, err)
}

func TestIsPrimaryAddressCandidate(t *testing.T) {
	assert.True(t, IsPrimaryAddressCandidate("Vlan301", 2))
	assert.True(t, IsPrimaryAddressCandidate("Vlan130", 3))
	assert.True(t, IsPrimaryAddressCandidate("Vlan10", 1))
	assert.False(t, IsPrimaryAddressCandidate("Vlan10", 2))
	assert.False(t, IsPrimaryAddressCandidate("GigabitEthernet1/0/1", 0))
}
