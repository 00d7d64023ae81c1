// Package nav derives what the signed-in user may see and do from a
// capability set: the drawer entries of the application shell and the state
// of per-record action icons.
package nav

import (
	"github.com/Mendozape/PayComMobile/internal/domain/auth"
)

// Entry is one navigation destination.
type Entry struct {
	Route    string
	Title    string
	Requires auth.Requirement
}

// Shell lists every destination in drawer order.
var Shell = []Entry{
	{Route: "/dashboard", Title: "Dashboard"},
	{Route: "/profile", Title: "Profile"},
	{Route: "/residents", Title: "Residents", Requires: auth.AnyOf("Ver-usuarios", "Ver-roles")},
	{Route: "/streets", Title: "Streets", Requires: auth.AnyOf("Ver-calles")},
	{Route: "/addresses", Title: "Addresses", Requires: auth.AnyOf("Ver-predios")},
	{Route: "/fees", Title: "Fees", Requires: auth.AnyOf("Ver-cuotas")},
	{Route: "/expenses", Title: "Expenses", Requires: auth.AnyOf("Ver-gastos")},
	{Route: "/expense-categories", Title: "Expense categories", Requires: auth.AnyOf("Ver-catalogo-gastos")},
	{Route: "/reports", Title: "Reports", Requires: auth.AnyOf("Ver-reportes")},
	{Route: "/statement", Title: "Account statement", Requires: auth.AnyOf("ver-estado-cuenta")},
}

// Visible returns the entries whose requirement set satisfies, in order.
func Visible(entries []Entry, set auth.CapabilitySet) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Requires.Satisfied(set) {
			out = append(out, e)
		}
	}
	return out
}

// Allowed reports whether route is reachable with set. Unknown routes are not.
func Allowed(entries []Entry, route string, set auth.CapabilitySet) bool {
	for _, e := range entries {
		if e.Route == route {
			return e.Requires.Satisfied(set)
		}
	}
	return false
}

// ActionState is the rendering state of a record action icon.
type ActionState int

const (
	// Hidden means the user lacks the capability.
	Hidden ActionState = iota
	// Disabled means the user may act but the record is soft-deleted.
	Disabled
	// Enabled means the action is available.
	Enabled
)

func (s ActionState) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Enabled:
		return "enabled"
	default:
		return "hidden"
	}
}

// RecordPermissions names the capability behind each record action. An empty
// permission means the action does not exist for the resource.
type RecordPermissions struct {
	Edit    auth.Permission
	Delete  auth.Permission
	Restore auth.Permission
}

// Actions is the icon state for one record row.
type Actions struct {
	Edit    ActionState
	Delete  ActionState
	Restore ActionState
}

// RecordActions decides icon states for a record. Capability decides
// visibility; the soft-delete marker disables edit and delete and is the only
// state in which restore is offered.
func RecordActions(set auth.CapabilitySet, perms RecordPermissions, deleted bool) Actions {
	a := Actions{
		Edit:    gate(set, perms.Edit),
		Delete:  gate(set, perms.Delete),
		Restore: gate(set, perms.Restore),
	}
	if deleted {
		a.Edit = disable(a.Edit)
		a.Delete = disable(a.Delete)
	} else {
		a.Restore = Hidden
	}
	return a
}

func gate(set auth.CapabilitySet, p auth.Permission) ActionState {
	if p == "" || !set.Has(p) {
		return Hidden
	}
	return Enabled
}

func disable(s ActionState) ActionState {
	if s == Enabled {
		return Disabled
	}
	return s
}
