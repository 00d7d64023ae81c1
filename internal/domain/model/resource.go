package model

import (
	"strings"

	"github.com/Mendozape/PayComMobile/internal/domain/auth"
)

// Resource describes how the client manages one backend collection.
type Resource struct {
	// Name is the collection path segment, e.g. "streets".
	Name   string
	View   auth.Permission
	Create auth.Permission
	Edit   auth.Permission
	Delete auth.Permission
	// Required lists payload fields that must be non-empty on save.
	Required []string
	// RequiredOnCreate lists fields required only when creating.
	RequiredOnCreate []string
	// SearchFields are matched by free-text search.
	SearchFields []string
	// ReasonRequired means deactivation sends a {reason} body.
	ReasonRequired bool
	// MinReason is the minimum trimmed reason length when ReasonRequired.
	MinReason int
	// Restorable resources expose POST <name>/restore/{id}.
	Restorable bool
}

// Names of the managed collections.
const (
	Residents         = "usuarios"
	Roles             = "roles"
	Streets           = "streets"
	Addresses         = "addresses"
	Fees              = "fees"
	Expenses          = "expenses"
	ExpenseCategories = "expense_categories"
)

// Catalog lists every managed collection keyed by name.
var Catalog = map[string]Resource{
	Residents: {
		Name:             Residents,
		View:             "Ver-usuarios",
		Create:           "Crear-usuarios",
		Edit:             "Editar-usuarios",
		Delete:           "Eliminar-usuarios",
		Required:         []string{"name", "email", "role"},
		RequiredOnCreate: []string{"password"},
		SearchFields:     []string{"name", "email"},
		Restorable:       true,
	},
	Roles: {
		Name:         Roles,
		View:         "Ver-roles",
		Create:       "Crear-roles",
		Edit:         "Editar-roles",
		Delete:       "Eliminar-roles",
		Required:     []string{"name"},
		SearchFields: []string{"name"},
	},
	Streets: {
		Name:         Streets,
		View:         "Ver-calles",
		Create:       "Crear-calles",
		Edit:         "Editar-calles",
		Required:     []string{"name"},
		SearchFields: []string{"name"},
	},
	Addresses: {
		Name:           Addresses,
		View:           "Ver-predios",
		Create:         "Crear-predios",
		Edit:           "Editar-predios",
		Delete:         "Eliminar-predios",
		Required:       []string{"street_id", "street_number", "user_id"},
		SearchFields:   []string{"full_address", "street_number", "owner_name", "community"},
		ReasonRequired: true,
		MinReason:      5,
	},
	Fees: {
		Name:           Fees,
		View:           "Ver-cuotas",
		Create:         "Crear-cuotas",
		Edit:           "Editar-cuotas",
		Delete:         "Eliminar-cuotas",
		Required:       []string{"name", "amount_occupied", "amount_empty", "amount_land"},
		SearchFields:   []string{"name", "description"},
		ReasonRequired: true,
		MinReason:      1,
	},
	Expenses: {
		Name:           Expenses,
		View:           "Ver-gastos",
		Create:         "Crear-gastos",
		Edit:           "Editar-gastos",
		Delete:         "Eliminar-gastos",
		Required:       []string{"expense_category_id", "amount", "expense_date"},
		SearchFields:   []string{"description", "amount", "expense_date"},
		ReasonRequired: true,
		MinReason:      10,
	},
	ExpenseCategories: {
		Name:         ExpenseCategories,
		View:         "Ver-catalogo-gastos",
		Create:       "Crear-catalogo-gastos",
		Edit:         "Editar-catalogo-gastos",
		Delete:       "Eliminar-catalogo-gastos",
		Required:     []string{"name"},
		SearchFields: []string{"name"},
	},
}

// Lookup returns the descriptor for name.
func Lookup(name string) (Resource, bool) {
	r, ok := Catalog[name]
	return r, ok
}

// MissingFields returns the required fields absent or blank in payload.
func (r Resource) MissingFields(payload Record, creating bool) []string {
	var missing []string
	check := func(fields []string) {
		for _, f := range fields {
			if strings.TrimSpace(payload.String(f)) == "" {
				missing = append(missing, f)
			}
		}
	}
	check(r.Required)
	if creating {
		check(r.RequiredOnCreate)
	}
	return missing
}
