package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/mercado-facil/internal/adminuser"
	"github.com/frahmantamala/mercado-facil/internal/auth"
	"github.com/frahmantamala/mercado-facil/internal/permission"
	"github.com/frahmantamala/mercado-facil/internal/report"
	"github.com/frahmantamala/mercado-facil/internal/transport/middleware"
	"github.com/frahmantamala/mercado-facil/internal/transport/swagger"
)

// Handlers groups everything the router mounts. Nil handlers leave their
// routes out.
type Handlers struct {
	Health         *HealthHandler
	Auth           *auth.Handler
	AdminUser      *adminuser.Handler
	Report         *report.Handler
	Permissions    middleware.PermissionChecker
	Spec           []byte
	AllowedOrigins string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, logger *slog.Logger) {
	router.Use(middleware.CORS(h.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	if h.Spec != nil {
		router.Get(swagger.SpecPath, swagger.SpecHandler(h.Spec))
		router.Handle("/swagger/*", swagger.Handler())
	}

	require := func(r permission.Resource, a permission.Action) func(http.Handler) http.Handler {
		return middleware.RequirePermission(h.Permissions, logger, r, a)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Auth == nil {
			return
		}
		r.Post("/auth/session", h.Auth.Session)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Post("/auth/logout", h.Auth.Logout)

			if h.AdminUser != nil {
				pr.Route("/admin-users", func(ar chi.Router) {
					ar.With(require(permission.ResourceUsuariosAdmin, permission.ActionRead)).Get("/", h.AdminUser.ListAdminUsers)
					ar.With(require(permission.ResourceUsuariosAdmin, permission.ActionCreate)).Post("/", h.AdminUser.CreateAdminUser)
					ar.With(require(permission.ResourceUsuariosAdmin, permission.ActionRead)).Get("/{id}", h.AdminUser.GetAdminUser)
					ar.With(require(permission.ResourceUsuariosAdmin, permission.ActionUpdate)).Patch("/{id}", h.AdminUser.UpdateAdminUser)
					ar.With(require(permission.ResourceUsuariosAdmin, permission.ActionDelete)).Delete("/{id}", h.AdminUser.DeactivateAdminUser)
					ar.With(require(permission.ResourceUsuariosAdmin, permission.ActionUpdate)).Put("/{id}/permissions", h.AdminUser.TogglePermission)
				})
				pr.With(require(permission.ResourceUsuariosAdmin, permission.ActionRead)).Get("/role-templates/{role}", h.AdminUser.GetRoleTemplate)
			}

			if h.Report != nil {
				pr.With(require(permission.ResourceDashboard, permission.ActionRead)).Get("/dashboard", h.Report.Report(report.KindDashboard))
				pr.Route("/reports", func(rr chi.Router) {
					rr.Use(require(permission.ResourceRelatorios, permission.ActionRead))
					for _, kind := range report.Kinds() {
						if kind == report.KindDashboard {
							continue
						}
						rr.Get("/"+string(kind), h.Report.Report(kind))
					}
				})
			}
		})
	})
}
