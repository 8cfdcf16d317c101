package permission

import (
	"errors"
	"fmt"
	"slices"
)

var ErrActionNotAllowed = errors.New("action not allowed on resource")

// Permission is the set of actions granted on one resource. Actions are kept
// in canonical order (create, read, update, delete) without duplicates.
type Permission struct {
	Resource Resource `json:"resource"`
	Actions  []Action `json:"actions"`
}

// List is an ordered permission list holding at most one entry per resource.
type List []Permission

// New builds a permission for r, rejecting actions the resource cannot carry.
func New(r Resource, actions ...Action) (Permission, error) {
	if !r.Valid() {
		return Permission{}, fmt.Errorf("%w: %d", ErrUnknownResource, uint8(r))
	}
	p := Permission{Resource: r, Actions: []Action{}}
	for _, a := range actions {
		if !r.Allows(a) {
			return Permission{}, fmt.Errorf("%w: %s on %s", ErrActionNotAllowed, a, r)
		}
		p.Actions = addAction(p.Actions, a)
	}
	return p, nil
}

func (p Permission) Has(a Action) bool {
	return slices.Contains(p.Actions, a)
}

func (p Permission) clone() Permission {
	return Permission{Resource: p.Resource, Actions: slices.Clone(p.Actions)}
}

// Clone returns a deep copy of the list.
func (l List) Clone() List {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	for i, p := range l {
		out[i] = p.clone()
	}
	return out
}

// Find returns the entry for r.
func (l List) Find(r Resource) (Permission, bool) {
	for _, p := range l {
		if p.Resource == r {
			return p, true
		}
	}
	return Permission{}, false
}

// Allows reports whether the list grants action a on resource r.
func (l List) Allows(r Resource, a Action) bool {
	p, ok := l.Find(r)
	return ok && p.Has(a)
}

// Normalize merges duplicate resource entries into the first occurrence,
// drops disallowed actions and removes entries left without actions.
func Normalize(l List) List {
	out := List{}
	index := make(map[Resource]int, len(l))
	for _, p := range l {
		if !p.Resource.Valid() {
			continue
		}
		i, seen := index[p.Resource]
		if !seen {
			out = append(out, Permission{Resource: p.Resource, Actions: []Action{}})
			i = len(out) - 1
			index[p.Resource] = i
		}
		for _, a := range p.Actions {
			if p.Resource.Allows(a) {
				out[i].Actions = addAction(out[i].Actions, a)
			}
		}
	}
	return slices.DeleteFunc(out, func(p Permission) bool { return len(p.Actions) == 0 })
}

// Merge toggles one action on one resource. Granting adds the action (creating
// the entry if needed); revoking removes it and drops the entry once it has no
// actions left. The input list is not modified and repeated calls with the
// same arguments are idempotent.
func Merge(l List, r Resource, a Action, grant bool) (List, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownResource, uint8(r))
	}
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, uint8(a))
	}

	out := l.Clone()
	i := slices.IndexFunc(out, func(p Permission) bool { return p.Resource == r })

	if grant {
		if !r.Allows(a) {
			return nil, fmt.Errorf("%w: %s on %s", ErrActionNotAllowed, a, r)
		}
		if i < 0 {
			return append(out, Permission{Resource: r, Actions: []Action{a}}), nil
		}
		out[i].Actions = addAction(out[i].Actions, a)
		return out, nil
	}

	if i < 0 {
		return out, nil
	}
	out[i].Actions = slices.DeleteFunc(out[i].Actions, func(x Action) bool { return x == a })
	if len(out[i].Actions) == 0 {
		out = slices.Delete(out, i, i+1)
	}
	return out, nil
}

// addAction inserts a keeping canonical order.
func addAction(actions []Action, a Action) []Action {
	if slices.Contains(actions, a) {
		return actions
	}
	actions = append(actions, a)
	slices.Sort(actions)
	return actions
}
