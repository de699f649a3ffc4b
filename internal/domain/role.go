package domain

import (
	"sort"
	"strings"
)

// Role enumerates helpdesk actor roles.
type Role string

const (
	RoleReporter      Role = "Reporter"
	RoleStaff         Role = "Staff"
	RoleManager       Role = "Manager"
	RoleAdministrator Role = "Administrator"
)

// privilege orders roles from least to most privileged.
var privilege = map[Role]int{
	RoleReporter:      1,
	RoleStaff:         2,
	RoleManager:       3,
	RoleAdministrator: 4,
}

// ParseRole matches a role label case-insensitively.
func ParseRole(raw string) (Role, bool) {
	raw = strings.TrimSpace(raw)
	for role := range privilege {
		if strings.EqualFold(string(role), raw) {
			return role, true
		}
	}
	return "", false
}

// Roles is a set of roles held by one actor.
type Roles map[Role]struct{}

// NewRoles builds a set from the given roles.
func NewRoles(roles ...Role) Roles {
	set := make(Roles, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// ParseRoles converts raw labels, dropping any that are not recognised.
func ParseRoles(raw []string) Roles {
	set := make(Roles, len(raw))
	for _, label := range raw {
		if role, ok := ParseRole(label); ok {
			set[role] = struct{}{}
		}
	}
	return set
}

// Has reports membership.
func (r Roles) Has(role Role) bool {
	_, ok := r[role]
	return ok
}

// HasAny reports whether the set intersects the given roles.
func (r Roles) HasAny(roles ...Role) bool {
	for _, role := range roles {
		if r.Has(role) {
			return true
		}
	}
	return false
}

// IsManagerLike is the single check for Manager/Administrator gating.
func (r Roles) IsManagerLike() bool {
	return r.HasAny(RoleManager, RoleAdministrator)
}

// Primary returns the most privileged role held, or "" for an empty set.
func (r Roles) Primary() Role {
	var best Role
	for role := range r {
		if privilege[role] > privilege[best] {
			best = role
		}
	}
	return best
}

// Strings returns the labels sorted by privilege, lowest first.
func (r Roles) Strings() []string {
	roles := make([]Role, 0, len(r))
	for role := range r {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return privilege[roles[i]] < privilege[roles[j]] })
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}

// Actor is the authenticated user acting on tickets.
type Actor struct {
	ID    string
	Name  string
	Email string
	Roles Roles
}
