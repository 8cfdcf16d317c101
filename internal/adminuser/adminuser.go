package adminuser

import (
	"errors"
	"strings"
	"time"

	adminuserDatamodel "github.com/frahmantamala/mercado-facil/internal/core/datamodel/adminuser"
	"github.com/frahmantamala/mercado-facil/internal/permission"
)

var (
	ErrNotFound         = errors.New("admin user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrEmailImmutable   = errors.New("email cannot be changed")
	ErrInactive         = errors.New("admin user is inactive")
	ErrSelfDeactivation = errors.New("admin users cannot deactivate themselves")

	// ErrInvalidation means the change was stored but cached permission
	// decisions could not be dropped.
	ErrInvalidation = errors.New("permission cache invalidation failed")
)

type AdminUser struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone,omitempty"`
	Role        permission.Role `json:"role"`
	Permissions permission.List `json:"permissions"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedBy   *string         `json:"created_by,omitempty"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Actor projects the user onto what the permission engine needs.
func (u *AdminUser) Actor() *permission.Actor {
	return &permission.Actor{
		ID:          u.ID,
		Role:        u.Role,
		Active:      u.Active,
		Permissions: u.Permissions.Clone(),
	}
}

func ToDataModel(u *AdminUser) *adminuserDatamodel.AdminUser {
	entries := make([]adminuserDatamodel.PermissionEntry, 0, len(u.Permissions))
	for _, p := range permission.Normalize(u.Permissions) {
		actions := make([]string, 0, len(p.Actions))
		for _, a := range p.Actions {
			actions = append(actions, a.String())
		}
		entries = append(entries, adminuserDatamodel.PermissionEntry{Resource: p.Resource.String(), Actions: actions})
	}

	return &adminuserDatamodel.AdminUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        string(u.Role),
		Permissions: entries,
		IsActive:    u.Active,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
		CreatedBy:   u.CreatedBy,
	}
}

// FromDataModel maps a stored row back to the domain. Unknown resource or
// action names are dropped so a corrupt row can only ever lose grants.
func FromDataModel(m *adminuserDatamodel.AdminUser) *AdminUser {
	perms := permission.List{}
	for _, e := range m.Permissions {
		r, err := permission.ParseResource(e.Resource)
		if err != nil {
			continue
		}
		p := permission.Permission{Resource: r}
		for _, name := range e.Actions {
			if a, err := permission.ParseAction(name); err == nil {
				p.Actions = append(p.Actions, a)
			}
		}
		perms = append(perms, p)
	}

	return &AdminUser{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		Role:        permission.Role(m.Role),
		Permissions: permission.Normalize(perms),
		Active:      m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		LastLoginAt: m.LastLoginAt,
		CreatedBy:   m.CreatedBy,
	}
}
