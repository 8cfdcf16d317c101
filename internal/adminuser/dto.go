package adminuser

import "github.com/frahmantamala/mercado-facil/internal/permission"

// CreateRequest leaves Permissions nil to take the role template; an empty
// list creates a user with no grants.
type CreateRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=120"`
	Email       string          `json:"email" validate:"required,email"`
	Phone       string          `json:"phone,omitempty" validate:"omitempty,max=32"`
	Role        string          `json:"role" validate:"required,role"`
	Permissions permission.List `json:"permissions,omitempty"`
}

type UpdateRequest struct {
	Name        *string         `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Email       *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string         `json:"phone,omitempty" validate:"omitempty,max=32"`
	Role        *string         `json:"role,omitempty" validate:"omitempty,role"`
	Permissions permission.List `json:"permissions,omitempty"`
	// ApplyTemplate replaces the permissions with the (new) role's template.
	ApplyTemplate bool `json:"apply_template"`
}

type TogglePermissionRequest struct {
	Resource permission.Resource `json:"resource" validate:"required"`
	Action   permission.Action   `json:"action" validate:"required"`
	Grant    bool                `json:"grant"`
}

type ListFilter struct {
	Role   string
	Active *bool
	Limit  int
	Offset int
}

type AdminUsersResponse struct {
	AdminUsers []*AdminUser `json:"admin_users"`
	Total      int          `json:"total"`
}

type RoleTemplateResponse struct {
	Role        permission.Role `json:"role"`
	Permissions permission.List `json:"permissions"`
}
