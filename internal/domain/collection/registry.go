package collection

import (
	"fmt"
	"sync"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/collection/field"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/facet"
)

// Registered collection names.
const (
	Orders   = "orders"
	Accounts = "accounts"
	Fleets   = "fleets"
	Drivers  = "drivers"
	Billings = "billings"
	Invoices = "invoices"
	Pods     = "pods"
)

// Registry is the authoritative, ordered list of searchable collections.
type Registry struct {
	ordered []*Descriptor
	byName  map[string]*Descriptor
}

// NewRegistry builds a registry from descriptors, keeping their order.
func NewRegistry(descs ...*Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Descriptor, len(descs))}
	for _, d := range descs {
		if _, dup := r.byName[d.Name()]; dup {
			return nil, fmt.Errorf("duplicate collection %q", d.Name())
		}
		r.ordered = append(r.ordered, d)
		r.byName[d.Name()] = d
	}
	return r, nil
}

// Get returns the descriptor for name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// All returns every descriptor in registry order.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names returns every collection name in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.ordered))
	for i, d := range r.ordered {
		out[i] = d.Name()
	}
	return out
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the seven built-in collections.
func Default() *Registry {
	defaultOnce.Do(func() {
		descs := make([]*Descriptor, 0, len(builtin))
		for _, s := range builtin {
			d, err := New(s)
			if err != nil {
				panic(err)
			}
			descs = append(descs, d)
		}
		r, err := NewRegistry(descs...)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

func text(n string) field.Field    { return field.MustNew(n, field.Text) }
func tag(n string) field.Field     { return field.MustNew(n, field.Tag) }
func numeric(n string) field.Field { return field.MustNew(n, field.Numeric) }
func date(n string) field.Field    { return field.MustNew(n, field.Date) }

var builtin = []Spec{
	{
		Name: Orders,
		Fields: []field.Field{
			text("order_number"), text("hawb_numbers").Multi(), tag("status"),
			tag("account_id"), tag("driver_id"), tag("fleet_id"), tag("assigned_dispatcher_id"),
			text("origin"), text("destination"),
			date("pickup_date"), date("delivery_date"), date("estimated_delivery"), date("created_at"),
			numeric("total_weight"), numeric("total_value"),
		},
		Searchable:   []string{"order_number", "hawb_numbers", "status"},
		Autocomplete: []string{"order_number", "hawb_numbers"},
		StatusField:  "status",
		Display: []string{
			"order_number", "hawb_numbers", "status", "origin", "destination",
			"pickup_date", "delivery_date", "estimated_delivery", "created_at",
			"account_id", "driver_id",
		},
		Facets: []facet.Spec{
			facet.StringSpec("statusFacet", "status", 10),
			facet.DateSpec("createdDateFacet", "created_at"),
		},
	},
	{
		Name: Accounts,
		Fields: []field.Field{
			text("account_name"), text("company_name"), text("account_number"),
			tag("account_type"), tag("status"), tag("email"),
			numeric("credit_limit"), numeric("current_balance"), date("created_at"),
		},
		Searchable:   []string{"account_name", "company_name", "account_number"},
		Autocomplete: []string{"account_name", "company_name"},
		StatusField:  "status",
		Display: []string{
			"account_name", "company_name", "account_number", "account_type",
			"status", "email", "credit_limit", "current_balance", "created_at",
		},
		Facets: []facet.Spec{
			facet.StringSpec("accountTypeFacet", "account_type", 10),
			facet.StringSpec("statusFacet", "status", 5),
		},
	},
	{
		Name: Fleets,
		Fields: []field.Field{
			text("vehicle_name"), text("vin"), text("license_plate"), text("make"), text("model"),
			tag("vehicle_type"), tag("status"), tag("fuel_type"), tag("current_driver_id"),
			numeric("year"), date("created_at"),
		},
		Searchable:   []string{"vehicle_name", "vin", "license_plate", "make", "model"},
		Autocomplete: []string{"vehicle_name", "vin", "license_plate"},
		StatusField:  "status",
		Display: []string{
			"vehicle_name", "vin", "license_plate", "make", "model", "year",
			"vehicle_type", "status", "fuel_type", "created_at",
		},
		Facets: []facet.Spec{
			facet.StringSpec("vehicleTypeFacet", "vehicle_type", 10),
			facet.StringSpec("statusFacet", "status", 5),
			facet.StringSpec("makeFacet", "make", 20),
		},
	},
	{
		Name: Drivers,
		Fields: []field.Field{
			text("full_name"), text("license_number"), tag("employee_code"),
			tag("status"), tag("license_state"), tag("assigned_fleet_id"), tag("phone"),
			date("hire_date"), date("created_at"),
		},
		Searchable:   []string{"full_name", "license_number"},
		Autocomplete: []string{"full_name"},
		StatusField:  "status",
		Display: []string{
			"full_name", "license_number", "employee_code", "status",
			"license_state", "phone", "hire_date", "created_at",
		},
		Facets: []facet.Spec{
			facet.StringSpec("statusFacet", "status", 5),
		},
	},
	{
		Name: Billings,
		Fields: []field.Field{
			text("billing_number"), tag("status"), tag("account_id"),
			numeric("amount"), numeric("total_amount"),
			date("billing_date"), date("due_date"), date("created_at"),
		},
		Searchable:   []string{"billing_number", "status"},
		Autocomplete: []string{"billing_number"},
		StatusField:  "status",
		Display: []string{
			"billing_number", "status", "account_id", "amount", "total_amount",
			"billing_date", "due_date", "created_at",
		},
		Facets: []facet.Spec{
			facet.StringSpec("statusFacet", "status", 10),
			facet.DateSpec("billingDateFacet", "billing_date"),
		},
	},
	{
		Name: Invoices,
		Fields: []field.Field{
			text("invoice_number"), tag("status"), tag("account_id"), tag("billing_id"),
			numeric("total_amount"), date("invoice_date"), date("due_date"), date("created_at"),
		},
		Searchable:   []string{"invoice_number", "status"},
		Autocomplete: []string{"invoice_number"},
		StatusField:  "status",
		Display: []string{
			"invoice_number", "status", "account_id", "billing_id", "total_amount",
			"invoice_date", "due_date", "created_at",
		},
		Facets: []facet.Spec{
			facet.StringSpec("statusFacet", "status", 10),
			facet.DateSpec("invoiceDateFacet", "invoice_date"),
		},
	},
	{
		Name: Pods,
		Fields: []field.Field{
			text("pod_number"), text("recipient_name"), tag("delivery_status"),
			tag("order_id"), tag("driver_id"), date("delivery_date"), date("created_at"),
		},
		Searchable:   []string{"pod_number"},
		Autocomplete: []string{"pod_number"},
		StatusField:  "delivery_status",
		Display: []string{
			"pod_number", "recipient_name", "delivery_status", "order_id",
			"driver_id", "delivery_date", "created_at",
		},
	},
}
