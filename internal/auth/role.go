package auth

import "strings"

type Role string

const (
	RoleAdmin          Role = "admin"
	RoleHR             Role = "hr"
	RoleProjectManager Role = "project_manager"
	RoleEmployee       Role = "employee"
	RoleIntern         Role = "intern"
)

// AllRoles is ordered from most to least privileged.
var AllRoles = []Role{RoleAdmin, RoleHR, RoleProjectManager, RoleEmployee, RoleIntern}

func AllRoleNames() []string {
	out := make([]string, len(AllRoles))
	for i, r := range AllRoles {
		out[i] = string(r)
	}
	return out
}

// LocationRequiredRoles must pass the office geofence to log in or clock in/out.
var LocationRequiredRoles = []Role{RoleEmployee, RoleIntern}

// roleHierarchy lists, for each role, every role it may act as.
var roleHierarchy = map[Role][]Role{
	RoleAdmin:          {RoleAdmin, RoleHR, RoleProjectManager, RoleEmployee, RoleIntern},
	RoleHR:             {RoleHR, RoleProjectManager, RoleEmployee, RoleIntern},
	RoleProjectManager: {RoleProjectManager, RoleEmployee, RoleIntern},
	RoleEmployee:       {RoleEmployee, RoleIntern},
	RoleIntern:         {RoleIntern},
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := roleHierarchy[r]
	return r, ok
}

func (r Role) String() string { return string(r) }

// RequiresProfile reports whether accounts with this role must have an employee profile.
func (r Role) RequiresProfile() bool {
	return r == RoleEmployee || r == RoleIntern || r == RoleProjectManager
}

func (r Role) RequiresLocation() bool {
	for _, lr := range LocationRequiredRoles {
		if lr == r {
			return true
		}
	}
	return false
}

// HasPermission walks the hierarchy: admin may act as hr, hr as project_manager, and so on.
func HasPermission(userRole, required Role) bool {
	for _, r := range roleHierarchy[userRole] {
		if r == required {
			return true
		}
	}
	return false
}

// Policy is an allow-list of roles. With Inherit set, a role also passes when
// the hierarchy lets it act as one of the allowed roles.
type Policy struct {
	Allowed []Role
	Inherit bool
}

// AnyOf is an exact allow-list.
func AnyOf(roles ...Role) Policy {
	return Policy{Allowed: roles}
}

// AtLeast admits role and everything above it in the hierarchy.
func AtLeast(role Role) Policy {
	return Policy{Allowed: []Role{role}, Inherit: true}
}

func (p Policy) Permits(role Role) bool {
	for _, allowed := range p.Allowed {
		if role == allowed {
			return true
		}
		if p.Inherit && HasPermission(role, allowed) {
			return true
		}
	}
	return false
}

func (p Policy) roles() []string {
	out := make([]string, len(p.Allowed))
	for i, r := range p.Allowed {
		out[i] = string(r)
	}
	return out
}
