package adminuser_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/mercado-facil/internal"
	"github.com/frahmantamala/mercado-facil/internal/adminuser"
	adminuserDatamodel "github.com/frahmantamala/mercado-facil/internal/core/datamodel/adminuser"
	"github.com/frahmantamala/mercado-facil/internal/core/events"
	"github.com/frahmantamala/mercado-facil/internal/permission"
)

type mockRepository struct {
	mu         sync.Mutex
	rows       map[string]*adminuserDatamodel.AdminUser
	shouldFail bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{rows: map[string]*adminuserDatamodel.AdminUser{}}
}

func (m *mockRepository) SetShouldFail(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = v
}

func (m *mockRepository) copyOf(row *adminuserDatamodel.AdminUser) *adminuserDatamodel.AdminUser {
	c := *row
	c.Permissions = append([]adminuserDatamodel.PermissionEntry(nil), row.Permissions...)
	return &c
}

func (m *mockRepository) GetByEmail(_ context.Context, email string) (*adminuserDatamodel.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, errors.New("connection refused")
	}
	for _, row := range m.rows {
		if row.Email == email {
			return m.copyOf(row), nil
		}
	}
	return nil, nil
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*adminuserDatamodel.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, errors.New("connection refused")
	}
	if row, ok := m.rows[id]; ok {
		return m.copyOf(row), nil
	}
	return nil, nil
}

func (m *mockRepository) List(_ context.Context, filter adminuser.ListFilter) ([]*adminuserDatamodel.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*adminuserDatamodel.AdminUser{}
	for _, row := range m.rows {
		if filter.Role != "" && row.Role != filter.Role {
			continue
		}
		if filter.Active != nil && row.IsActive != *filter.Active {
			continue
		}
		out = append(out, m.copyOf(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *mockRepository) Create(_ context.Context, user *adminuserDatamodel.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return errors.New("connection refused")
	}
	m.rows[user.ID] = m.copyOf(user)
	return nil
}

func (m *mockRepository) Update(_ context.Context, user *adminuserDatamodel.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[user.ID]; !ok {
		return adminuser.ErrNotFound
	}
	m.rows[user.ID] = m.copyOf(user)
	return nil
}

func (m *mockRepository) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return adminuser.ErrNotFound
	}
	row.IsActive = false
	return nil
}

func (m *mockRepository) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		row.LastLoginAt = &at
	}
	return nil
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

var _ = Describe("AdminUser Service", func() {
	var (
		ctx     context.Context
		repo    *mockRepository
		bus     *events.EventBus
		service *adminuser.Service
		changed []string
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockRepository()
		bus = events.NewEventBus(discard)
		changed = nil
		bus.Subscribe(events.EventTypeAdminUserPermissionsChanged, func(_ context.Context, e events.Event) error {
			id, _ := events.AdminUserIDOf(e)
			changed = append(changed, id)
			return nil
		})
		service = adminuser.NewService(repo, bus, discard).WithClock(func() time.Time { return fixedNow })
	})

	createUser := func(email, role string) *adminuser.AdminUser {
		u, err := service.Create(ctx, "root", adminuser.CreateRequest{Name: "Ana Souza", Email: email, Role: role})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	Describe("Create", func() {
		It("prefills the role template when no permissions are given", func() {
			u := createUser("Ana@Mercado.com ", "moderador")

			tmpl, err := permission.RoleTemplate(permission.RoleModerador)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Permissions).To(Equal(tmpl))
			Expect(u.Email).To(Equal("ana@mercado.com"))
			Expect(u.Active).To(BeTrue())
			Expect(*u.CreatedBy).To(Equal("root"))
			Expect(u.CreatedAt).To(Equal(fixedNow))
		})

		It("keeps custom permissions and merges duplicate resources", func() {
			u, err := service.Create(ctx, "", adminuser.CreateRequest{
				Name: "Bruno", Email: "bruno@mercado.com", Role: "admin",
				Permissions: permission.List{
					{Resource: permission.ResourcePedidos, Actions: []permission.Action{permission.ActionRead}},
					{Resource: permission.ResourcePedidos, Actions: []permission.Action{permission.ActionUpdate}},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Permissions).To(HaveLen(1))
			Expect(u.Permissions[0].Actions).To(Equal([]permission.Action{permission.ActionRead, permission.ActionUpdate}))
			Expect(u.CreatedBy).To(BeNil())
		})

		It("creates a user without grants from an explicit empty list", func() {
			u, err := service.Create(ctx, "root", adminuser.CreateRequest{
				Name: "Caio", Email: "caio@mercado.com", Role: "admin", Permissions: permission.List{},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Permissions).To(BeEmpty())
		})

		It("rejects writes on read-only resources", func() {
			_, err := service.Create(ctx, "root", adminuser.CreateRequest{
				Name: "Dora", Email: "dora@mercado.com", Role: "admin",
				Permissions: permission.List{{Resource: permission.ResourceRelatorios, Actions: []permission.Action{permission.ActionDelete}}},
			})
			Expect(err).To(MatchError(permission.ErrActionNotAllowed))
		})

		It("rejects a duplicate email", func() {
			createUser("eva@mercado.com", "admin")
			_, err := service.Create(ctx, "root", adminuser.CreateRequest{Name: "Eva Two", Email: "EVA@mercado.com", Role: "admin"})
			Expect(err).To(MatchError(adminuser.ErrEmailTaken))
		})

		It("returns field errors for invalid input", func() {
			_, err := service.Create(ctx, "root", adminuser.CreateRequest{Name: "F", Email: "not-an-email", Role: "owner"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(internal.ValidationErrors)
			fields := []string{}
			for _, e := range details.Errors {
				fields = append(fields, e.Field)
			}
			Expect(fields).To(ConsistOf("name", "email", "role"))
		})
	})

	Describe("Update", func() {
		It("does not re-apply the template on role change", func() {
			u := createUser("gil@mercado.com", "moderador")
			role := "admin"
			updated, err := service.Update(ctx, "root", u.ID, adminuser.UpdateRequest{Role: &role})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Role).To(Equal(permission.RoleAdmin))
			Expect(updated.Permissions).To(Equal(u.Permissions))
		})

		It("applies the template on request and publishes a change", func() {
			u := createUser("hugo@mercado.com", "moderador")
			role := "super_admin"
			updated, err := service.Update(ctx, "root", u.ID, adminuser.UpdateRequest{Role: &role, ApplyTemplate: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Permissions.Allows(permission.ResourceUsuariosAdmin, permission.ActionDelete)).To(BeTrue())
			Expect(changed).To(ContainElement(u.ID))
		})

		It("refuses to change the email", func() {
			u := createUser("ines@mercado.com", "admin")
			email := "other@mercado.com"
			_, err := service.Update(ctx, "root", u.ID, adminuser.UpdateRequest{Email: &email})
			Expect(err).To(MatchError(adminuser.ErrEmailImmutable))
		})

		It("reports unknown ids", func() {
			name := "Nobody"
			_, err := service.Update(ctx, "root", "missing", adminuser.UpdateRequest{Name: &name})
			Expect(err).To(MatchError(adminuser.ErrNotFound))
		})
	})

	Describe("TogglePermission", func() {
		It("grants and revokes through Merge", func() {
			u := createUser("joao@mercado.com", "moderador")

			got, err := service.TogglePermission(ctx, "root", u.ID, adminuser.TogglePermissionRequest{
				Resource: permission.ResourceClientes, Action: permission.ActionRead, Grant: false,
			})
			Expect(err).NotTo(HaveOccurred())
			_, ok := got.Permissions.Find(permission.ResourceClientes)
			Expect(ok).To(BeFalse())

			stored, err := service.Get(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Permissions).To(Equal(got.Permissions))
			Expect(changed).To(HaveLen(1))
		})
	})

	Describe("Deactivate", func() {
		It("soft deletes and keeps the record", func() {
			u := createUser("kleber@mercado.com", "admin")
			Expect(service.Deactivate(ctx, "root", u.ID)).To(Succeed())

			stored, err := service.Get(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Active).To(BeFalse())
			Expect(changed).To(ConsistOf(u.ID))
		})

		It("forbids self deactivation", func() {
			u := createUser("lia@mercado.com", "admin")
			Expect(service.Deactivate(ctx, u.ID, u.ID)).To(MatchError(adminuser.ErrSelfDeactivation))
		})
	})

	Describe("when the permission cache cannot be invalidated", func() {
		var cacheDown error

		BeforeEach(func() {
			cacheDown = errors.New("redis: connection refused")
			bus.Subscribe(events.EventTypeAdminUserPermissionsChanged, func(context.Context, events.Event) error { return cacheDown })
			bus.Subscribe(events.EventTypeAdminUserLoggedOut, func(context.Context, events.Event) error { return cacheDown })
		})

		It("reports the failure on a revoke and keeps the stored change", func() {
			u := createUser("tales@mercado.com", "admin")

			_, err := service.TogglePermission(ctx, "root", u.ID, adminuser.TogglePermissionRequest{
				Resource: permission.ResourceProdutos, Action: permission.ActionDelete, Grant: false,
			})
			Expect(err).To(MatchError(adminuser.ErrInvalidation))
			Expect(errors.Is(err, cacheDown)).To(BeTrue())

			stored, err := service.Get(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Permissions.Allows(permission.ResourceProdutos, permission.ActionDelete)).To(BeFalse())
		})

		It("reports the failure on role change, deactivation and logout", func() {
			u := createUser("ursula@mercado.com", "admin")
			role := "moderador"

			_, err := service.Update(ctx, "root", u.ID, adminuser.UpdateRequest{Role: &role, ApplyTemplate: true})
			Expect(err).To(MatchError(adminuser.ErrInvalidation))
			Expect(service.Deactivate(ctx, "root", u.ID)).To(MatchError(adminuser.ErrInvalidation))
			Expect(service.EndSession(ctx, u.ID)).To(MatchError(adminuser.ErrInvalidation))
		})

		It("maps to 503", func() {
			err := adminuser.ToAppError(fmt.Errorf("%w: %w", adminuser.ErrInvalidation, cacheDown))
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("Sessions", func() {
		It("stamps the last login of active admins", func() {
			u := createUser("mara@mercado.com", "admin")
			got, err := service.StartSession(ctx, "MARA@mercado.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(u.ID))
			Expect(*got.LastLoginAt).To(Equal(fixedNow))
		})

		It("resolves an admin without stamping a login", func() {
			createUser("rui@mercado.com", "moderador")
			got, err := service.Resolve(ctx, " rui@mercado.com ")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Role).To(Equal(permission.RoleModerador))
			Expect(got.LastLoginAt).To(BeNil())
		})

		It("rejects inactive and unknown admins", func() {
			u := createUser("nina@mercado.com", "admin")
			Expect(service.Deactivate(ctx, "root", u.ID)).To(Succeed())

			_, err := service.StartSession(ctx, "nina@mercado.com")
			Expect(err).To(MatchError(adminuser.ErrInactive))

			_, err = service.StartSession(ctx, "ghost@mercado.com")
			Expect(err).To(MatchError(adminuser.ErrNotFound))
		})
	})

	Describe("LookupActor", func() {
		It("feeds the permission engine", func() {
			u := createUser("otto@mercado.com", "admin")
			engine := permission.NewEngine(service, permission.NewMemoryCache(), discard)
			engine.Subscribe(bus)

			ok, err := engine.HasPermission(ctx, u.ID, permission.ResourceProdutos, permission.ActionDelete)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			_, err = service.TogglePermission(ctx, "root", u.ID, adminuser.TogglePermissionRequest{
				Resource: permission.ResourceProdutos, Action: permission.ActionDelete, Grant: false,
			})
			Expect(err).NotTo(HaveOccurred())

			ok, err = engine.HasPermission(ctx, u.ID, permission.ResourceProdutos, permission.ActionDelete)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("returns nil for unknown ids and indeterminate on store failure", func() {
			actor, err := service.LookupActor(ctx, "ghost")
			Expect(err).NotTo(HaveOccurred())
			Expect(actor).To(BeNil())

			repo.SetShouldFail(true)
			engine := permission.NewEngine(service, nil, discard)
			ok, err := engine.HasPermission(ctx, "any", permission.ResourceProdutos, permission.ActionRead)
			Expect(ok).To(BeFalse())
			Expect(err).To(MatchError(permission.ErrAuthorizationIndeterminate))
		})
	})
})
