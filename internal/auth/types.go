package auth

import "errors"

// Role represents an authorisation tier.
type Role string

const (
	// RoleViewer can inspect inventory, routes and topology.
	RoleViewer Role = "viewer"

	// RoleOperator can also make routes. Control panels and room touch
	// screens run as operators.
	RoleOperator Role = "operator"

	// RoleAdmin can also lock destinations, enable or disable presets and
	// read the route history.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of roles a token may carry.
var ValidRoles = []Role{RoleViewer, RoleOperator, RoleAdmin}

// IsValidRole returns true if r is a known role.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Auth errors.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrInvalidRole  = errors.New("invalid role")
	ErrEmptySecret  = errors.New("signing secret is empty")
)
