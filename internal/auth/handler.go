package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/frahmantamala/mercado-facil/internal"
	"github.com/frahmantamala/mercado-facil/internal/adminuser"
	"github.com/frahmantamala/mercado-facil/internal/transport"
	"github.com/frahmantamala/mercado-facil/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, token string) (*adminuser.AdminUser, error)
	StartSession(ctx context.Context, token string) (*SessionResponse, error)
	EndSession(ctx context.Context, actorID string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// Session exchanges an identity provider token for the admin profile.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &req); err != nil {
			h.WriteAppError(w, err)
			return
		}
	}
	token := req.Token
	if token == "" {
		token = h.ExtractTokenFromHeader(r)
	}
	if token == "" {
		h.WriteAppError(w, internal.NewUnauthorizedError("Missing token", internal.ErrCodeInvalidToken))
		return
	}

	resp, err := h.Service.StartSession(r.Context(), token)
	if err != nil {
		h.WriteAppError(w, ToAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	actorID := internal.ActorIDFromContext(r.Context())
	if actorID == "" {
		h.WriteAppError(w, internal.ErrInvalidToken)
		return
	}
	if err := h.Service.EndSession(r.Context(), actorID); err != nil {
		h.WriteAppError(w, ToAppError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware resolves the bearer token to an admin user and stores its id
// on the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, internal.NewUnauthorizedError("Missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		user, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.WriteAppError(w, ToAppError(err))
			return
		}

		ctx := internal.ContextWithActorID(r.Context(), user.ID)
		ctx = internal.ContextWithEmail(ctx, user.Email)
		ctx = logger.With(ctx, "admin_user_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ToAppError maps authentication errors onto transport errors.
func ToAppError(err error) error {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return internal.ErrTokenExpired
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrMissingEmail):
		return internal.ErrInvalidToken
	case errors.Is(err, adminuser.ErrNotFound):
		return internal.NewForbiddenError("No admin account for this identity", internal.ErrCodePermissionDenied)
	}
	return adminuser.ToAppError(err)
}
