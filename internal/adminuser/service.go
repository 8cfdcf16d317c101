package adminuser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/mercado-facil/internal/core/common/validation"
	adminuserDatamodel "github.com/frahmantamala/mercado-facil/internal/core/datamodel/adminuser"
	"github.com/frahmantamala/mercado-facil/internal/core/events"
	"github.com/frahmantamala/mercado-facil/internal/permission"
)

// RepositoryAPI is the admin user store. Lookups return (nil, nil) when no
// row matches.
type RepositoryAPI interface {
	GetByEmail(ctx context.Context, email string) (*adminuserDatamodel.AdminUser, error)
	GetByID(ctx context.Context, id string) (*adminuserDatamodel.AdminUser, error)
	List(ctx context.Context, filter ListFilter) ([]*adminuserDatamodel.AdminUser, error)
	Create(ctx context.Context, user *adminuserDatamodel.AdminUser) error
	Update(ctx context.Context, user *adminuserDatamodel.AdminUser) error
	Deactivate(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

type Service struct {
	repo   RepositoryAPI
	bus    events.Bus
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, bus events.Bus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Get(ctx context.Context, id string) (*AdminUser, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get admin user %s: %w", id, err)
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*AdminUser, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list admin users: %w", err)
	}
	users := make([]*AdminUser, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

func (s *Service) RoleTemplate(role string) (permission.List, error) {
	r, err := permission.ParseRole(role)
	if err != nil {
		return nil, err
	}
	return permission.RoleTemplate(r)
}

func (s *Service) Create(ctx context.Context, actorID string, req CreateRequest) (*AdminUser, error) {
	if appErr := validation.Struct(req); appErr != nil {
		return nil, appErr
	}

	role, err := permission.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	perms := req.Permissions
	if perms == nil {
		if perms, err = permission.RoleTemplate(role); err != nil {
			return nil, err
		}
	} else if perms, err = checkPermissions(perms); err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	now := s.now()
	user := &AdminUser{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Email:       email,
		Phone:       req.Phone,
		Role:        role,
		Permissions: perms,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if actorID != "" {
		user.CreatedBy = &actorID
	}

	if err := s.repo.Create(ctx, ToDataModel(user)); err != nil {
		return nil, fmt.Errorf("create admin user: %w", err)
	}

	s.logger.InfoContext(ctx, "admin user created",
		"admin_user_id", user.ID,
		"role", user.Role,
		"created_by", actorID)
	return user, nil
}

// Update edits contact fields, role and permissions. Changing the role alone
// leaves the permission list untouched unless ApplyTemplate is set.
func (s *Service) Update(ctx context.Context, actorID, id string, req UpdateRequest) (*AdminUser, error) {
	if appErr := validation.Struct(req); appErr != nil {
		return nil, appErr
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && NormalizeEmail(*req.Email) != user.Email {
		return nil, ErrEmailImmutable
	}

	changed := false
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		role, err := permission.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		changed = changed || role != user.Role
		user.Role = role
	}

	switch {
	case req.ApplyTemplate:
		if user.Permissions, err = permission.RoleTemplate(user.Role); err != nil {
			return nil, err
		}
		changed = true
	case req.Permissions != nil:
		if user.Permissions, err = checkPermissions(req.Permissions); err != nil {
			return nil, err
		}
		changed = true
	}

	user.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, ToDataModel(user)); err != nil {
		return nil, fmt.Errorf("update admin user %s: %w", id, err)
	}

	if changed {
		if err := s.publishChanged(ctx, id, actorID, "update"); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *Service) TogglePermission(ctx context.Context, actorID, id string, req TogglePermissionRequest) (*AdminUser, error) {
	if appErr := validation.Struct(req); appErr != nil {
		return nil, appErr
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged, err := permission.Merge(user.Permissions, req.Resource, req.Action, req.Grant)
	if err != nil {
		return nil, err
	}
	user.Permissions = merged
	user.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, ToDataModel(user)); err != nil {
		return nil, fmt.Errorf("update admin user %s: %w", id, err)
	}

	if err := s.publishChanged(ctx, id, actorID, "toggle"); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate soft deletes the user.
func (s *Service) Deactivate(ctx context.Context, actorID, id string) error {
	if actorID != "" && actorID == id {
		return ErrSelfDeactivation
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("deactivate admin user %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "admin user deactivated", "admin_user_id", id, "by", actorID)
	return s.publishChanged(ctx, id, actorID, "deactivate")
}

// Resolve returns the active admin user registered under email.
func (s *Service) Resolve(ctx context.Context, email string) (*AdminUser, error) {
	row, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("get admin user by email: %w", err)
	}
	if row == nil {
		return nil, ErrNotFound
	}

	user := FromDataModel(row)
	if !user.Active {
		return nil, ErrInactive
	}
	return user, nil
}

// StartSession resolves the admin behind a verified identity and stamps the
// login time.
func (s *Service) StartSession(ctx context.Context, email string) (*AdminUser, error) {
	user, err := s.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("stamp last login: %w", err)
	}
	user.LastLoginAt = &now

	s.logger.InfoContext(ctx, "admin session started", "admin_user_id", user.ID)
	return user, nil
}

func (s *Service) EndSession(ctx context.Context, actorID string) error {
	if s.bus == nil || actorID == "" {
		return nil
	}
	if err := s.bus.PublishSync(ctx, events.NewLoggedOutEvent(actorID)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidation, err)
	}
	return nil
}

// LookupActor serves the permission engine.
func (s *Service) LookupActor(ctx context.Context, id string) (*permission.Actor, error) {
	user, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user.Actor(), nil
}

// publishChanged drops cached decisions for id. The change is already stored
// when it fails, so the caller reports it and the client retries.
func (s *Service) publishChanged(ctx context.Context, id, actorID, reason string) error {
	if s.bus == nil {
		return nil
	}
	if err := s.bus.PublishSync(ctx, events.NewPermissionsChangedEvent(id, actorID, reason)); err != nil {
		s.logger.ErrorContext(ctx, "permission change notification failed",
			"admin_user_id", id,
			"reason", reason,
			"error", err)
		return fmt.Errorf("%w: %w", ErrInvalidation, err)
	}
	return nil
}

func checkPermissions(list permission.List) (permission.List, error) {
	for _, p := range list {
		if _, err := permission.New(p.Resource, p.Actions...); err != nil {
			return nil, err
		}
	}
	return permission.Normalize(list), nil
}
