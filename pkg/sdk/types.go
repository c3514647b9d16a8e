package globalsearch

import (
	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	domcol "github.com/ravi-m-fleetenable/global-search/internal/domain/collection"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/role"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
)

// Role is the caller's access role.
type Role = role.Role

// Roles.
const (
	RoleAdmin        = role.Admin
	RoleDispatcher   = role.Dispatcher
	RoleBilling      = role.Billing
	RoleDriver       = role.Driver
	RoleFleetManager = role.FleetManager
)

// Collection names.
const (
	Orders   = domcol.Orders
	Accounts = domcol.Accounts
	Fleets   = domcol.Fleets
	Drivers  = domcol.Drivers
	Billings = domcol.Billings
	Invoices = domcol.Invoices
	Pods     = domcol.Pods
)

// Caller identifies who runs a query; its role decides which records are visible.
type Caller = caller.Context

// NewCaller creates a Caller. driverID matters only for RoleDriver.
func NewCaller(userID string, r Role, driverID string) Caller {
	return caller.New(userID, r, driverID)
}

// ParseRole converts a role name.
func ParseRole(s string) (Role, error) {
	return role.Parse(s) //nolint:wrapcheck // domain error
}

// Response types.
type (
	Envelope         = result.Envelope
	CollectionResult = result.CollectionResult
	Item             = result.Item
	Suggestions      = result.Suggestions
	Suggestion       = result.Suggestion
	AdvancedResult   = result.Advanced
	FacetBucket      = facet.Bucket
)

// SearchParams describes one federated search.
type SearchParams struct {
	Query string
	// Type is a collection name or "all" (default).
	Type  string
	Page  int
	Limit int

	NoHighlights  bool
	IncludeFacets bool
	IncludeEmpty  bool

	Status []string
	// From and To bound created_at; any common date format.
	From, To string

	// Fuzzy overrides the client defaults for this search when non-nil.
	Fuzzy *FuzzyParams
}

// FuzzyParams overrides fuzzy matching per search. Nil fields keep the defaults.
type FuzzyParams = query.FuzzyOverride
