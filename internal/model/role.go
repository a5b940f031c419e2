package model

// Role identifies one of the three fixed dashboard roles.
// The set is closed; permission records exist per role, never per user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
	RoleViewer  Role = "viewer"
)

// AllRoles is a slice of every valid role, in bootstrap order.
var AllRoles = []Role{RoleAdmin, RoleAnalyst, RoleViewer}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAnalyst, RoleViewer:
		return true
	}
	return false
}
