package reconcile

import (
	"strings"

	"dev.hon.one/nbsync/netbox"
)

// Device roles.
const (
	RoleAccessSwitch = "access_switch"
	RoleDistrSwitch  = "distr_switch"
	RoleCoreSwitch   = "core_switch"
	RoleSrvSwitch    = "srv_switch"
)

// roleSuffix marks the roles this tool manages.
const roleSuffix = "switch"

// DefaultRoles - Roles created when NetBox has no switch roles yet.
var DefaultRoles = []netbox.DeviceRole{
	{Name: RoleAccessSwitch, Slug: RoleAccessSwitch, Color: "52be80", VMRole: false},
	{Name: RoleDistrSwitch, Slug: RoleDistrSwitch, Color: "f39c12", VMRole: false},
	{Name: RoleCoreSwitch, Slug: RoleCoreSwitch, Color: "a93226", VMRole: false},
	{Name: RoleSrvSwitch, Slug: RoleSrvSwitch, Color: "85c1e9", VMRole: false},
}

// ClassifyRole - Role from a lower-cased hostname. First match wins: srv, distr/bbsw, core, else access.
func ClassifyRole(hostname string) string {
	switch {
	case strings.Contains(hostname, "srv"):
		return RoleSrvSwitch
	case strings.Contains(hostname, "distr") || strings.Contains(hostname, "bbsw"):
		return RoleDistrSwitch
	case strings.Contains(hostname, "core"):
		return RoleCoreSwitch
	default:
		return RoleAccessSwitch
	}
}

func isManagedRole(name string) bool {
	return strings.HasSuffix(name, roleSuffix)
}
