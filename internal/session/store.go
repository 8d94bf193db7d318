package session

import (
	"slices"
	"strings"

	"github.com/itsmostafa/prayog/internal/value"
)

// NamePolicy decides which newly introduced names may become session state.
type NamePolicy struct {
	// Internal names are never tracked when they first appear
	Internal []string

	// PrivatePrefix marks implementation-private names; they are only kept if
	// the store already tracks them
	PrivatePrefix string
}

// WithInternal returns a copy of p with names appended to the deny-list.
func (p NamePolicy) WithInternal(names ...string) NamePolicy {
	out := NamePolicy{
		Internal:      slices.Clone(p.Internal),
		PrivatePrefix: p.PrivatePrefix,
	}
	for _, n := range names {
		if !slices.Contains(out.Internal, n) {
			out.Internal = append(out.Internal, n)
		}
	}
	return out
}

// admits reports whether a name that is new in this evaluation may be stored.
func (p NamePolicy) admits(name string, tracked bool) bool {
	if slices.Contains(p.Internal, name) {
		return false
	}
	if p.PrivatePrefix != "" && strings.HasPrefix(name, p.PrivatePrefix) {
		return tracked
	}
	return true
}

// Store holds the bindings that persist across evaluations. Contents change
// only through Set, Merge and Reconcile.
type Store struct {
	vars   value.Bindings
	policy NamePolicy
}

// NewStore returns an empty store filtering new names with policy.
func NewStore(policy NamePolicy) *Store {
	return &Store{vars: make(value.Bindings), policy: policy}
}

// Get returns a snapshot of the current bindings.
func (s *Store) Get() value.Bindings {
	return s.vars.Clone()
}

// Lookup returns the value bound to name.
func (s *Store) Lookup(name string) (value.Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Len returns the number of tracked bindings.
func (s *Store) Len() int {
	return len(s.vars)
}

// Set binds name to v.
func (s *Store) Set(name string, v value.Value) {
	s.vars[name] = v
}

// Merge binds every name in b, overwriting existing bindings.
func (s *Store) Merge(b value.Bindings) {
	for name, v := range b {
		s.vars[name] = v
	}
}

// Reconcile folds the bindings reported after an evaluation back into the
// store and returns the names whose binding was added or changed.
func (s *Store) Reconcile(before, after value.Bindings) []string {
	next := Reconcile(s.vars, before, after, s.policy)
	var changed []string
	for _, name := range next.Names() {
		old, ok := s.vars[name]
		if !ok || !value.Equal(old, next[name]) {
			changed = append(changed, name)
		}
	}
	s.vars = next
	return changed
}

// Reconcile computes the store contents after an evaluation. Names new in
// after (absent from before) are added when policy admits them; names already
// in current take their value from after when it differs. Names missing from
// after keep their current value. The inputs are not modified.
func Reconcile(current, before, after value.Bindings, policy NamePolicy) value.Bindings {
	next := current.Clone()

	for name, v := range after {
		if _, existed := before[name]; existed {
			continue
		}
		_, tracked := current[name]
		if policy.admits(name, tracked) {
			next[name] = v
		}
	}

	for name, old := range current {
		if v, ok := after[name]; ok && !value.Equal(old, v) {
			next[name] = v
		}
	}

	return next
}
