package identity

import "github.com/threadcraft/backend/internal/domain/shared"

// Role represents the fixed set of roles in the system. Roles gate HTTP
// endpoint access; admin passes every gate.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleSalesperson  Role = "salesperson"
	RoleDesigner     Role = "designer"
	RoleManufacturer Role = "manufacturer"
	RoleCustomer     Role = "customer"
)

// AllRoles lists every valid role
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleSalesperson, RoleDesigner, RoleManufacturer, RoleCustomer}
}

// ParseRole validates and returns a role from its string form
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", shared.NewDomainError("INVALID_ROLE", "Unknown role: "+s)
	}
	return r, nil
}

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSalesperson, RoleDesigner, RoleManufacturer, RoleCustomer:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to internal staff
func (r Role) IsStaff() bool {
	return r != RoleCustomer
}

func (r Role) String() string {
	return string(r)
}
