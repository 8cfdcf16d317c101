package auth

import (
	"github.com/frahmantamala/mercado-facil/internal/adminuser"
	"github.com/frahmantamala/mercado-facil/internal/permission"
)

// SessionRequest accepts the identity provider token in the body; the
// Authorization header works too.
type SessionRequest struct {
	Token string `json:"token,omitempty"`
}

type SessionResponse struct {
	AdminUser *adminuser.AdminUser  `json:"admin_user"`
	Visible   []permission.Resource `json:"visible_resources"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
