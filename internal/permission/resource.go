package permission

import (
	"errors"
	"fmt"
)

// Resource is one of the fixed entity types an admin can manage. The zero
// value is not a valid resource.
type Resource uint8

const (
	resourceInvalid Resource = iota
	ResourceProdutos
	ResourceCategorias
	ResourceClientes
	ResourcePedidos
	ResourceUsuariosAdmin
	ResourceDashboard
	ResourceRelatorios
)

// Action is one of create/read/update/delete. The zero value is not a valid action.
type Action uint8

const (
	actionInvalid Action = iota
	ActionCreate
	ActionRead
	ActionUpdate
	ActionDelete
)

var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrUnknownAction   = errors.New("unknown action")
)

var resourceNames = map[Resource]string{
	ResourceProdutos:      "produtos",
	ResourceCategorias:    "categorias",
	ResourceClientes:      "clientes",
	ResourcePedidos:       "pedidos",
	ResourceUsuariosAdmin: "usuarios_admin",
	ResourceDashboard:     "dashboard",
	ResourceRelatorios:    "relatorios",
}

var actionNames = map[Action]string{
	ActionCreate: "create",
	ActionRead:   "read",
	ActionUpdate: "update",
	ActionDelete: "delete",
}

// Resources lists every resource in declaration order.
func Resources() []Resource {
	return []Resource{
		ResourceProdutos,
		ResourceCategorias,
		ResourceClientes,
		ResourcePedidos,
		ResourceUsuariosAdmin,
		ResourceDashboard,
		ResourceRelatorios,
	}
}

// Actions lists every action in canonical order.
func Actions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
}

func ParseResource(s string) (Resource, error) {
	for r, name := range resourceNames {
		if name == s {
			return r, nil
		}
	}
	return resourceInvalid, fmt.Errorf("%w: %q", ErrUnknownResource, s)
}

func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return actionInvalid, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

func (r Resource) String() string {
	if name, ok := resourceNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Resource(%d)", uint8(r))
}

func (r Resource) Valid() bool {
	_, ok := resourceNames[r]
	return ok
}

// ReadOnly reports whether the resource only ever carries the read action.
func (r Resource) ReadOnly() bool {
	return r == ResourceDashboard || r == ResourceRelatorios
}

// Allows reports whether action a may appear on this resource at all.
func (r Resource) Allows(a Action) bool {
	if !r.Valid() || !a.Valid() {
		return false
	}
	if r.ReadOnly() {
		return a == ActionRead
	}
	return true
}

func (r Resource) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownResource, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Resource) UnmarshalText(text []byte) error {
	parsed, err := ParseResource(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

func (a Action) Valid() bool {
	_, ok := actionNames[a]
	return ok
}

func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
