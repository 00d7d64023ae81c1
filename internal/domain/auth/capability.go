package auth

import (
	"maps"
	"slices"
	"sync"
)

// CapabilitySet is the deduplicated union of a user's direct permissions and
// the permissions of every role the user holds.
type CapabilitySet map[Permission]struct{}

// Compute derives the capability set for u. A nil user yields an empty set.
// u is never modified.
func Compute(u *User) CapabilitySet {
	set := CapabilitySet{}
	if u == nil {
		return set
	}
	for _, p := range u.Permissions {
		set[p] = struct{}{}
	}
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			set[p] = struct{}{}
		}
	}
	return set
}

// Has reports whether p is in the set.
func (s CapabilitySet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Can reports whether any of required is in the set. No arguments means no
// capability was asked for, which is false.
func (s CapabilitySet) Can(required ...Permission) bool {
	for _, p := range required {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct permissions.
func (s CapabilitySet) Len() int { return len(s) }

// Sorted returns the permissions in lexical order.
func (s CapabilitySet) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Can reports whether u holds any of required. It is always false for a nil
// user.
func Can(u *User, required ...Permission) bool {
	if u == nil {
		return false
	}
	return Compute(u).Can(required...)
}

// Requirement gates a screen or action. The zero value imposes nothing.
type Requirement struct {
	AnyOf []Permission
}

// AnyOf builds a requirement met by any one of perms.
func AnyOf(perms ...Permission) Requirement { return Requirement{AnyOf: perms} }

// Open reports whether the requirement imposes no permission.
func (r Requirement) Open() bool { return len(r.AnyOf) == 0 }

// Satisfied reports whether set meets the requirement.
func (r Requirement) Satisfied(set CapabilitySet) bool {
	return r.Open() || set.Can(r.AnyOf...)
}

// Resolver caches the capability set of the most recently resolved user. The
// cache is keyed on the *User pointer, so a refreshed profile (a new value)
// recomputes while repeated checks against the same user do not.
type Resolver struct {
	mu   sync.Mutex
	user *User
	set  CapabilitySet
}

// For returns a copy of the capability set of u. Writes to the copy do not
// reach the cache.
func (r *Resolver) For(u *User) CapabilitySet {
	if u == nil {
		return CapabilitySet{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.cachedLocked(u))
}

func (r *Resolver) cachedLocked(u *User) CapabilitySet {
	if r.set == nil || r.user != u {
		r.user = u
		r.set = Compute(u)
	}
	return r.set
}

// Can reports whether u holds any of required.
func (r *Resolver) Can(u *User, required ...Permission) bool {
	if u == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cachedLocked(u).Can(required...)
}
