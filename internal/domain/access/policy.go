// Package access decides which collections a role may search and which
// mandatory filter clauses scope its queries.
package access

import (
	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/role"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
)

// Scoping field paths.
const (
	DispatcherField = "assigned_dispatcher_id"
	DriverField     = "driver_id"
)

var visible = map[role.Role]map[string]bool{
	role.Dispatcher:   set(collection.Orders, collection.Drivers, collection.Fleets, collection.Pods),
	role.Billing:      set(collection.Billings, collection.Invoices, collection.Orders, collection.Accounts),
	role.Driver:       set(collection.Orders, collection.Pods, collection.Drivers),
	role.FleetManager: set(collection.Fleets, collection.Drivers, collection.Orders),
}

// scopeFunc returns the mandatory clauses for one (role, collection) cell.
type scopeFunc func(c caller.Context) []query.Clause

var scopes = map[role.Role]map[string]scopeFunc{
	role.Dispatcher: {
		collection.Orders: ownedOrUnassigned,
	},
	role.Driver: {
		collection.Orders:  linkedDriver(DriverField),
		collection.Pods:    linkedDriver(DriverField),
		collection.Drivers: linkedDriver(collection.IDField),
	},
}

// CanSearch reports whether r may search the named collection.
func CanSearch(r role.Role, name string) bool {
	if r == role.Admin {
		return true
	}
	return visible[r][name]
}

// Searchable returns the registry collections r may search, in registry order.
func Searchable(r role.Role, reg *collection.Registry) []*collection.Descriptor {
	var out []*collection.Descriptor
	for _, d := range reg.All() {
		if CanSearch(r, d.Name()) {
			out = append(out, d)
		}
	}
	return out
}

// MandatoryClauses returns the filter clauses every query by c against the
// named collection must be intersected with. Nil means no row scoping.
func MandatoryClauses(c caller.Context, name string) []query.Clause {
	fn, ok := scopes[c.Role()][name]
	if !ok {
		return nil
	}
	return fn(c)
}

func ownedOrUnassigned(c caller.Context) []query.Clause {
	should := []query.Clause{query.Equals(DispatcherField, nil)}
	if c.UserID() != "" {
		should = append([]query.Clause{query.Equals(DispatcherField, c.UserID())}, should...)
	}
	return []query.Clause{query.Compound(nil, should, nil, nil)}
}

func linkedDriver(path string) scopeFunc {
	return func(c caller.Context) []query.Clause {
		if c.DriverID() == "" {
			return []query.Clause{query.None()}
		}
		return []query.Clause{query.Equals(path, c.DriverID())}
	}
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
