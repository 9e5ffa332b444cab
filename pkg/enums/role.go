package enums

// Role selects which bearer token a request carries. The platform exposes
// distinct credentials for the storefront, the kitchen back office, and the
// super-admin console.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleSuper Role = "super"
)

var validRoles = []Role{
	RoleUser,
	RoleAdmin,
	RoleSuper,
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
