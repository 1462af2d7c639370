package models

import (
	"strconv"
	"strings"
)

// Permission is the staff capability set, one distinct bit per capability.
type Permission uint32

const (
	PermissionBans Permission = 1 << iota
	PermissionRoles
	PermissionTags
	PermissionNotes
	PermissionReports
	PermissionWatchlist
	PermissionGiftCodes
	PermissionAPIKeys
	PermissionAdmin // implies everything
)

var permissionNames = map[Permission]string{
	PermissionBans:      "bans",
	PermissionRoles:     "roles",
	PermissionTags:      "tags",
	PermissionNotes:     "notes",
	PermissionReports:   "reports",
	PermissionWatchlist: "watchlist",
	PermissionGiftCodes: "giftcodes",
	PermissionAPIKeys:   "apikeys",
	PermissionAdmin:     "admin",
}

// Has reports whether all requested capability bits are present.
// PermissionAdmin satisfies any check.
func (p Permission) Has(req Permission) bool {
	if p&PermissionAdmin != 0 {
		return true
	}
	return p&req == req
}

// Names returns the capability names present in the set, in bit order.
func (p Permission) Names() []string {
	var names []string
	for bit := PermissionBans; bit <= PermissionAdmin; bit <<= 1 {
		if p&bit != 0 {
			names = append(names, permissionNames[bit])
		}
	}
	return names
}

// ParsePermissions accepts either a comma-separated capability name list
// ("bans,roles,notes") or a raw bitmask integer, as forwarded by the gateway.
// Unknown names are ignored.
func ParsePermissions(s string) Permission {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return Permission(n)
	}
	var p Permission
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		for bit, name := range permissionNames {
			if name == part {
				p |= bit
			}
		}
	}
	return p
}
