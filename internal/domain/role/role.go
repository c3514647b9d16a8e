// Package role defines the closed set of caller roles.
package role

import "fmt"

// Role is a caller role.
type Role string

const (
	// Admin sees everything.
	Admin Role = "admin"
	// Dispatcher sees operational collections and their own orders.
	Dispatcher Role = "dispatcher"
	// Billing sees financial collections.
	Billing Role = "billing"
	// Driver sees records linked to their driver profile.
	Driver Role = "driver"
	// FleetManager sees vehicles, drivers and orders.
	FleetManager Role = "fleet_manager"
)

var all = []Role{Admin, Dispatcher, Billing, Driver, FleetManager}

// All returns every role in declaration order.
func All() []Role {
	out := make([]Role, len(all))
	copy(out, all)
	return out
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case Admin, Dispatcher, Billing, Driver, FleetManager:
		return true
	}
	return false
}

// Parse converts s into a Role.
func Parse(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
