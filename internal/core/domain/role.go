package domain

// Role is the closed set of portal roles. Every role branch in the portal
// lives in the permission package; other packages only read capabilities.
type Role uint8

const (
	// RoleUnknown is assigned to any role string the portal does not recognise.
	// It is fail-closed: it grants nothing beyond the profile page.
	RoleUnknown Role = iota
	RoleAdmin
	RoleDemand
	RoleSupply
)

var roleNames = map[Role]string{
	RoleUnknown: "unknown",
	RoleAdmin:   "admin",
	RoleDemand:  "demand",
	RoleSupply:  "supply",
}

// ParseRole maps a stored role string to a Role.
//
//	""        → RoleDemand (absent role defaults to demand)
//	"admin"   → RoleAdmin
//	"demand"  → RoleDemand
//	"supply"  → RoleSupply
//	anything  → RoleUnknown
//
// Matching is exact: "ADMIN" or " admin" are not admin.
func ParseRole(s string) Role {
	switch s {
	case "":
		return RoleDemand
	case "admin":
		return RoleAdmin
	case "demand":
		return RoleDemand
	case "supply":
		return RoleSupply
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return roleNames[RoleUnknown]
}

// MarshalText renders the role as its lowercase name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText never fails; unrecognised values become RoleUnknown.
func (r *Role) UnmarshalText(b []byte) error {
	*r = ParseRole(string(b))
	return nil
}
