package permission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/frahmantamala/mercado-facil/internal/core/events"
)

// ErrAuthorizationIndeterminate marks a check that could not be decided
// because the admin user store failed. It is never returned for a denial.
var ErrAuthorizationIndeterminate = errors.New("authorization indeterminate")

type IndeterminateError struct {
	ActorID string
	Err     error
}

func (e *IndeterminateError) Error() string {
	return fmt.Sprintf("%s for actor %q: %v", ErrAuthorizationIndeterminate, e.ActorID, e.Err)
}

func (e *IndeterminateError) Unwrap() error { return e.Err }

func (e *IndeterminateError) Is(target error) bool {
	return target == ErrAuthorizationIndeterminate
}

// Actor is the slice of an admin user the engine needs to decide.
type Actor struct {
	ID          string
	Role        Role
	Active      bool
	Permissions List
}

// ActorLookup resolves actors by id. A missing actor is (nil, nil).
type ActorLookup interface {
	LookupActor(ctx context.Context, id string) (*Actor, error)
}

type ActorLookupFunc func(ctx context.Context, id string) (*Actor, error)

func (f ActorLookupFunc) LookupActor(ctx context.Context, id string) (*Actor, error) {
	return f(ctx, id)
}

type Engine struct {
	lookup ActorLookup
	cache  Cache
	logger *slog.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

func NewEngine(lookup ActorLookup, cache Cache, logger *slog.Logger) *Engine {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{lookup: lookup, cache: cache, logger: logger, generations: map[string]uint64{}}
}

// generation counts invalidations of actorID seen by this engine.
func (e *Engine) generation(actorID string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generations[actorID]
}

func (e *Engine) bump(actorID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generations[actorID]++
}

// HasPermission reports whether actorID may perform a on r. It fails closed:
// an empty id, an unknown or inactive actor, or a missing grant all yield
// false with a nil error. Only a store failure returns an error, and that
// error matches ErrAuthorizationIndeterminate.
func (e *Engine) HasPermission(ctx context.Context, actorID string, r Resource, a Action) (bool, error) {
	if actorID == "" || !r.Valid() || !a.Valid() {
		return false, nil
	}

	allowed, found, err := e.cache.Get(ctx, actorID, r, a)
	if err != nil {
		e.logger.WarnContext(ctx, "permission cache read failed", "actor_id", actorID, "error", err)
	} else if found {
		return allowed, nil
	}

	gen := e.generation(actorID)
	actor, err := e.lookup.LookupActor(ctx, actorID)
	if err != nil {
		e.logger.ErrorContext(ctx, "permission lookup failed",
			"actor_id", actorID,
			"resource", r.String(),
			"action", a.String(),
			"error", err)
		return false, &IndeterminateError{ActorID: actorID, Err: err}
	}
	if actor == nil {
		return false, nil
	}

	allowed = actor.Active && actor.Permissions.Allows(r, a)
	if e.generation(actorID) != gen {
		return allowed, nil
	}
	if err := e.cache.Set(ctx, actorID, r, a, allowed); err != nil {
		e.logger.WarnContext(ctx, "permission cache write failed", "actor_id", actorID, "error", err)
	}
	// an invalidation that ran between the check and Set must not be undone
	if e.generation(actorID) != gen {
		if err := e.cache.Invalidate(ctx, actorID); err != nil {
			e.logger.WarnContext(ctx, "permission cache invalidate failed", "actor_id", actorID, "error", err)
		}
	}
	return allowed, nil
}

// Invalidate drops every cached decision for actorID.
func (e *Engine) Invalidate(ctx context.Context, actorID string) error {
	if actorID == "" {
		return nil
	}
	e.bump(actorID)
	if err := e.cache.Invalidate(ctx, actorID); err != nil {
		return fmt.Errorf("invalidate permission cache: %w", err)
	}
	e.logger.DebugContext(ctx, "permission cache invalidated", "actor_id", actorID)
	return nil
}

// Subscribe wires cache invalidation to admin user lifecycle events.
func (e *Engine) Subscribe(bus events.Bus) {
	handler := func(ctx context.Context, event events.Event) error {
		id, ok := events.AdminUserIDOf(event)
		if !ok {
			return fmt.Errorf("event %s carries no admin user id", event.EventID())
		}
		return e.Invalidate(ctx, id)
	}
	bus.Subscribe(events.EventTypeAdminUserPermissionsChanged, handler)
	bus.Subscribe(events.EventTypeAdminUserLoggedOut, handler)
}

// Session binds an actor to the engine for the lifetime of one request.
type Session struct {
	ActorID string
	engine  *Engine
}

func (e *Engine) Session(actorID string) Session {
	return Session{ActorID: actorID, engine: e}
}

func (s Session) Can(ctx context.Context, r Resource, a Action) (bool, error) {
	if s.engine == nil {
		return false, nil
	}
	return s.engine.HasPermission(ctx, s.ActorID, r, a)
}

// Visible returns the resources the session may read, in canonical order.
func (s Session) Visible(ctx context.Context) ([]Resource, error) {
	out := []Resource{}
	for _, r := range Resources() {
		ok, err := s.Can(ctx, r, ActionRead)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
