package enums

import "fmt"

// Role represents the access level a session operates under.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleShopOwner Role = "shop_owner"
)

var validRoles = []Role{
	RoleAdmin,
	RoleShopOwner,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// IndexScope returns the vector index partition a role reads and writes.
// Admin and shop owner documents never share a partition.
func (r Role) IndexScope() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "shop"
}
