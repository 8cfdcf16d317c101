package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/mercado-facil/internal/adminuser"
	"github.com/frahmantamala/mercado-facil/internal/permission"
)

type Verifier interface {
	Verify(token string) (*Claims, error)
}

// AdminUsersAPI is the slice of the admin user service sessions depend on.
type AdminUsersAPI interface {
	Resolve(ctx context.Context, email string) (*adminuser.AdminUser, error)
	StartSession(ctx context.Context, email string) (*adminuser.AdminUser, error)
	EndSession(ctx context.Context, actorID string) error
}

type Service struct {
	verifier Verifier
	users    AdminUsersAPI
	engine   *permission.Engine
	logger   *slog.Logger
}

func NewService(verifier Verifier, users AdminUsersAPI, engine *permission.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{verifier: verifier, users: users, engine: engine, logger: logger}
}

// Authenticate maps a bearer token to the active admin user it belongs to.
func (s *Service) Authenticate(ctx context.Context, token string) (*adminuser.AdminUser, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.users.Resolve(ctx, claims.Email)
}

// StartSession opens an admin session for a verified identity and lists the
// resources the admin may see.
func (s *Service) StartSession(ctx context.Context, token string) (*SessionResponse, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.StartSession(ctx, claims.Email)
	if err != nil {
		return nil, err
	}

	// Stale decisions from a previous session must not leak into this one.
	if err := s.engine.Invalidate(ctx, user.ID); err != nil {
		s.logger.WarnContext(ctx, "permission cache invalidation failed", "admin_user_id", user.ID, "error", err)
	}

	visible, err := s.engine.Session(user.ID).Visible(ctx)
	if err != nil {
		return nil, fmt.Errorf("list visible resources: %w", err)
	}
	return &SessionResponse{AdminUser: user, Visible: visible}, nil
}

func (s *Service) EndSession(ctx context.Context, actorID string) error {
	if err := s.users.EndSession(ctx, actorID); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	s.logger.InfoContext(ctx, "admin session ended", "admin_user_id", actorID)
	return nil
}
