package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/mercado-facil/internal"
	"github.com/frahmantamala/mercado-facil/internal/permission"
	"github.com/frahmantamala/mercado-facil/internal/transport"
)

type PermissionChecker interface {
	HasPermission(ctx context.Context, actorID string, r permission.Resource, a permission.Action) (bool, error)
}

// RequirePermission lets the request through only when the actor on the
// context holds action on resource. A check the engine cannot decide is
// answered with 503, never with a grant.
func RequirePermission(checker PermissionChecker, logger *slog.Logger, resource permission.Resource, action permission.Action) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := internal.ActorIDFromContext(r.Context())
			if actorID == "" {
				base.WriteAppError(w, internal.NewUnauthorizedError("Authentication required", internal.ErrCodeInvalidToken))
				return
			}

			allowed, err := checker.HasPermission(r.Context(), actorID, resource, action)
			if err != nil {
				if errors.Is(err, permission.ErrAuthorizationIndeterminate) {
					base.WriteAppError(w, internal.NewIndeterminateError(err))
					return
				}
				base.WriteAppError(w, err)
				return
			}
			if !allowed {
				logger.WarnContext(r.Context(), "access denied",
					"admin_user_id", actorID,
					"resource", resource.String(),
					"action", action.String())
				base.WriteAppError(w, internal.ErrPermissionDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
