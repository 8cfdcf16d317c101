package permission

import (
	"errors"
	"fmt"
)

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleModerador  Role = "moderador"
)

var ErrUnknownRole = errors.New("unknown role")

func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleModerador}
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleModerador:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

var crud = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

var templates = map[Role]List{
	RoleAdmin: {
		{Resource: ResourceProdutos, Actions: crud},
		{Resource: ResourceCategorias, Actions: crud},
		{Resource: ResourceClientes, Actions: []Action{ActionRead, ActionUpdate}},
		{Resource: ResourcePedidos, Actions: []Action{ActionRead, ActionUpdate}},
		{Resource: ResourceDashboard, Actions: []Action{ActionRead}},
		{Resource: ResourceRelatorios, Actions: []Action{ActionRead}},
	},
	RoleModerador: {
		{Resource: ResourceProdutos, Actions: []Action{ActionRead, ActionUpdate}},
		{Resource: ResourceCategorias, Actions: []Action{ActionRead, ActionUpdate}},
		{Resource: ResourceClientes, Actions: []Action{ActionRead}},
		{Resource: ResourcePedidos, Actions: []Action{ActionRead, ActionUpdate}},
		{Resource: ResourceDashboard, Actions: []Action{ActionRead}},
	},
}

func init() {
	all := make(List, 0, len(Resources()))
	for _, r := range Resources() {
		p := Permission{Resource: r}
		for _, a := range Actions() {
			if r.Allows(a) {
				p.Actions = append(p.Actions, a)
			}
		}
		all = append(all, p)
	}
	templates[RoleSuperAdmin] = all
}

// RoleTemplate returns the default permission list for role. The result is a
// fresh copy each time; editing it never affects later calls.
func RoleTemplate(role Role) (List, error) {
	t, ok := templates[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, string(role))
	}
	return t.Clone(), nil
}
