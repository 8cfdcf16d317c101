package permission_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/frahmantamala/mercado-facil/internal/core/events"
	"github.com/frahmantamala/mercado-facil/internal/permission"
)

type mockLookup struct {
	mu         sync.Mutex
	actors     map[string]*permission.Actor
	calls      int
	shouldFail bool
}

func newMockLookup() *mockLookup {
	return &mockLookup{actors: map[string]*permission.Actor{}}
}

func (m *mockLookup) LookupActor(_ context.Context, id string) (*permission.Actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.shouldFail {
		return nil, errors.New("store unreachable")
	}
	return m.actors[id], nil
}

func (m *mockLookup) SetShouldFail(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = v
}

func (m *mockLookup) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("Engine", func() {
	var (
		ctx    context.Context
		lookup *mockLookup
		cache  *permission.MemoryCache
		engine *permission.Engine
	)

	BeforeEach(func() {
		ctx = context.Background()
		lookup = newMockLookup()
		cache = permission.NewMemoryCache()
		engine = permission.NewEngine(lookup, cache, discard)

		admin, err := permission.RoleTemplate(permission.RoleAdmin)
		Expect(err).NotTo(HaveOccurred())
		lookup.actors["adm-1"] = &permission.Actor{ID: "adm-1", Role: permission.RoleAdmin, Active: true, Permissions: admin}

		all, err := permission.RoleTemplate(permission.RoleSuperAdmin)
		Expect(err).NotTo(HaveOccurred())
		lookup.actors["adm-off"] = &permission.Actor{ID: "adm-off", Role: permission.RoleSuperAdmin, Active: false, Permissions: all}
	})

	It("allows granted actions", func() {
		ok, err := engine.HasPermission(ctx, "adm-1", permission.ResourceProdutos, permission.ActionDelete)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("denies every combination for inactive actors", func() {
		for _, r := range permission.Resources() {
			for _, a := range permission.Actions() {
				ok, err := engine.HasPermission(ctx, "adm-off", r, a)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeFalse())
			}
		}
	})

	It("denies resources missing from the list for any action", func() {
		for _, a := range permission.Actions() {
			ok, err := engine.HasPermission(ctx, "adm-1", permission.ResourceUsuariosAdmin, a)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		}
	})

	It("denies missing actions, unknown actors and empty ids without error", func() {
		ok, err := engine.HasPermission(ctx, "adm-1", permission.ResourceClientes, permission.ActionDelete)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		ok, err = engine.HasPermission(ctx, "ghost", permission.ResourceClientes, permission.ActionRead)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		ok, err = engine.HasPermission(ctx, "", permission.ResourceClientes, permission.ActionRead)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(lookup.Calls()).To(Equal(2))
	})

	It("reports store failures as indeterminate", func() {
		lookup.SetShouldFail(true)
		ok, err := engine.HasPermission(ctx, "adm-1", permission.ResourceProdutos, permission.ActionRead)
		Expect(ok).To(BeFalse())
		Expect(errors.Is(err, permission.ErrAuthorizationIndeterminate)).To(BeTrue())

		var ind *permission.IndeterminateError
		Expect(errors.As(err, &ind)).To(BeTrue())
		Expect(ind.ActorID).To(Equal("adm-1"))
		Expect(ind.Err).To(MatchError("store unreachable"))
	})

	It("serves repeated checks from the cache until invalidated", func() {
		for i := 0; i < 3; i++ {
			ok, err := engine.HasPermission(ctx, "adm-1", permission.ResourceProdutos, permission.ActionRead)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		}
		Expect(lookup.Calls()).To(Equal(1))

		lookup.actors["adm-1"].Active = false
		Expect(engine.Invalidate(ctx, "adm-1")).To(Succeed())

		ok, err := engine.HasPermission(ctx, "adm-1", permission.ResourceProdutos, permission.ActionRead)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(lookup.Calls()).To(Equal(2))
	})

	It("does not keep a decision read before a concurrent invalidation", func() {
		var racing *permission.Engine
		stale := lookup.actors["adm-1"]
		racing = permission.NewEngine(permission.ActorLookupFunc(func(ctx context.Context, id string) (*permission.Actor, error) {
			Expect(racing.Invalidate(ctx, id)).To(Succeed())
			return stale, nil
		}), cache, discard)

		ok, err := racing.HasPermission(ctx, "adm-1", permission.ResourceProdutos, permission.ActionRead)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(cache.Len()).To(Equal(0))
	})

	It("does not cache unknown actors", func() {
		_, _ = engine.HasPermission(ctx, "ghost", permission.ResourceProdutos, permission.ActionRead)
		Expect(cache.Len()).To(Equal(0))
	})

	It("invalidates on admin user events", func() {
		bus := events.NewEventBus(discard)
		engine.Subscribe(bus)

		_, err := engine.HasPermission(ctx, "adm-1", permission.ResourceProdutos, permission.ActionRead)
		Expect(err).NotTo(HaveOccurred())
		Expect(cache.Len()).To(Equal(1))

		Expect(bus.PublishSync(ctx, events.NewLoggedOutEvent("adm-1"))).To(Succeed())
		Expect(cache.Len()).To(Equal(0))

		_, err = engine.HasPermission(ctx, "adm-1", permission.ResourceProdutos, permission.ActionRead)
		Expect(err).NotTo(HaveOccurred())
		Expect(bus.Publish(ctx, events.NewPermissionsChangedEvent("adm-1", "adm-root", "role"))).To(Succeed())
		bus.Wait()
		Expect(cache.Len()).To(Equal(0))
	})

	It("answers concurrent checks consistently", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				ok, err := engine.HasPermission(ctx, "adm-1", permission.ResourcePedidos, permission.ActionUpdate)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
			}()
		}
		wg.Wait()
	})

	It("falls back to the store when the cache backend is down", func() {
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		DeferCleanup(client.Close)
		e := permission.NewEngine(lookup, permission.NewRedisCache(client, "", time.Minute), discard)

		ok, err := e.HasPermission(ctx, "adm-1", permission.ResourceCategorias, permission.ActionCreate)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(e.Invalidate(ctx, "adm-1")).To(HaveOccurred())
	})

	Describe("Session", func() {
		It("checks on behalf of its actor", func() {
			s := engine.Session("adm-1")
			ok, err := s.Can(ctx, permission.ResourceRelatorios, permission.ActionRead)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			visible, err := s.Visible(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(visible).To(Equal([]permission.Resource{
				permission.ResourceProdutos,
				permission.ResourceCategorias,
				permission.ResourceClientes,
				permission.ResourcePedidos,
				permission.ResourceDashboard,
				permission.ResourceRelatorios,
			}))
		})

		It("denies from a zero value session", func() {
			ok, err := permission.Session{ActorID: "adm-1"}.Can(ctx, permission.ResourceProdutos, permission.ActionRead)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})
})
