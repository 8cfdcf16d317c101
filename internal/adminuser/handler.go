package adminuser

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/mercado-facil/internal"
	"github.com/frahmantamala/mercado-facil/internal/permission"
	"github.com/frahmantamala/mercado-facil/internal/transport"
)

type ServiceAPI interface {
	Get(ctx context.Context, id string) (*AdminUser, error)
	List(ctx context.Context, filter ListFilter) ([]*AdminUser, error)
	RoleTemplate(role string) (permission.List, error)
	Create(ctx context.Context, actorID string, req CreateRequest) (*AdminUser, error)
	Update(ctx context.Context, actorID, id string, req UpdateRequest) (*AdminUser, error)
	TogglePermission(ctx context.Context, actorID, id string, req TogglePermissionRequest) (*AdminUser, error)
	Deactivate(ctx context.Context, actorID, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListAdminUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Role: q.Get("role")}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			h.WriteAppError(w, internal.NewValidationFieldError("active", "active must be true or false", internal.ErrCodeValidationFailed))
			return
		}
		filter.Active = &active
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	users, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AdminUsersResponse{AdminUsers: users, Total: len(users)})
}

func (h *Handler) GetAdminUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) CreateAdminUser(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	user, err := h.Service.Create(r.Context(), internal.ActorIDFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) UpdateAdminUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	user, err := h.Service.Update(r.Context(), internal.ActorIDFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) TogglePermission(w http.ResponseWriter, r *http.Request) {
	var req TogglePermissionRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	user, err := h.Service.TogglePermission(r.Context(), internal.ActorIDFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) DeactivateAdminUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Deactivate(r.Context(), internal.ActorIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetRoleTemplate(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")
	perms, err := h.Service.RoleTemplate(role)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RoleTemplateResponse{Role: permission.Role(role), Permissions: perms})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.WriteAppError(w, ToAppError(err))
}

// ToAppError maps admin user errors onto transport errors.
func ToAppError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return internal.ErrAdminUserNotFound
	case errors.Is(err, ErrEmailTaken):
		return internal.ErrEmailTaken
	case errors.Is(err, ErrEmailImmutable):
		return internal.NewValidationFieldError("email", "email cannot be changed", internal.ErrCodeEmailImmutable)
	case errors.Is(err, ErrInactive):
		return internal.ErrUserInactive
	case errors.Is(err, ErrSelfDeactivation):
		return internal.NewForbiddenError("You cannot deactivate your own account", internal.ErrCodePermissionDenied)
	case errors.Is(err, ErrInvalidation):
		return internal.NewUnavailableError("Change saved but permission cache could not be refreshed, retry", err)
	}
	if appErr := transport.TranslateError(err); appErr != nil {
		return appErr
	}
	return err
}
