package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/mercado-facil/internal/adminuser"
	"github.com/frahmantamala/mercado-facil/internal/permission"
	"github.com/frahmantamala/mercado-facil/internal/report"
	"github.com/spf13/cobra"
)

var (
	seedAdminEmail string
	seedAdminName  string
	seedCatalog    bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with the first super admin and sample data",
	Long:  `Create the first super_admin with the role template permissions and, optionally, a sample catalog with customers and orders for development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		deps, err := initializeDependencies(ctx, cfg)
		if err != nil {
			return err
		}
		defer deps.Close(context.Background())

		if err := seedSuperAdmin(ctx, deps.AdminUserService, seedAdminName, seedAdminEmail); err != nil {
			return err
		}

		if !seedCatalog {
			return nil
		}

		loc, err := cfg.Reports.Location()
		if err != nil {
			return err
		}
		products, customers, orders := sampleCatalog(time.Now().In(loc))
		if err := deps.Writer.Save(ctx, products, customers, orders); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		fmt.Printf("Seeded %d products, %d customers and %d orders\n", len(products), len(customers), len(orders))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminEmail, "email", "admin@mercadofacil.com.br", "email of the first super admin")
	seedCmd.Flags().StringVar(&seedAdminName, "name", "Administrador", "name of the first super admin")
	seedCmd.Flags().BoolVar(&seedCatalog, "catalog", true, "also seed sample products, customers and orders")
}

type adminCreator interface {
	Create(ctx context.Context, actorID string, req adminuser.CreateRequest) (*adminuser.AdminUser, error)
}

// seedSuperAdmin is idempotent: an already registered email is left alone.
func seedSuperAdmin(ctx context.Context, users adminCreator, name, email string) error {
	user, err := users.Create(ctx, "", adminuser.CreateRequest{
		Name:  name,
		Email: email,
		Role:  string(permission.RoleSuperAdmin),
	})
	switch {
	case errors.Is(err, adminuser.ErrEmailTaken):
		fmt.Println("super admin already exists:", email)
		return nil
	case err != nil:
		return fmt.Errorf("failed to seed super admin: %w", err)
	}
	fmt.Printf("Seeded super admin %s (%s)\n", user.Email, user.ID)
	return nil
}

type sampleProduct struct {
	id, name, category string
	price, cost        report.Money
	stock              int
}

var sampleProducts = []sampleProduct{
	{"p-arroz", "Arroz Tipo 1 5kg", "mercearia", 2899, 2100, 42},
	{"p-feijao", "Feijão Carioca 1kg", "mercearia", 899, 610, 8},
	{"p-cafe", "Café Torrado 500g", "mercearia", 1890, 1320, 0},
	{"p-banana", "Banana Prata kg", "hortifruti", 599, 350, 3},
	{"p-tomate", "Tomate Italiano kg", "hortifruti", 849, 500, 25},
	{"p-leite", "Leite Integral 1L", "laticinios", 549, 390, 60},
	{"p-queijo", "Queijo Minas Frescal", "laticinios", 2490, 1700, 5},
	{"p-detergente", "Detergente Neutro 500ml", "limpeza", 289, 150, 120},
	{"p-sabao", "Sabão em Pó 1kg", "limpeza", 1590, 980, 9},
	{"p-pao", "Pão Francês kg", "padaria", 1699, 900, 15},
}

var sampleCustomers = []struct {
	id, name, email   string
	registeredDaysAgo int
}{
	{"c-ana", "Ana Souza", "ana@example.com", 400},
	{"c-bruno", "Bruno Lima", "bruno@example.com", 320},
	{"c-carla", "Carla Dias", "carla@example.com", 210},
	{"c-diego", "Diego Alves", "diego@example.com", 150},
	{"c-elisa", "Elisa Rocha", "elisa@example.com", 60},
	{"c-fabio", "Fábio Nunes", "fabio@example.com", 20},
}

// sampleCatalog builds a deterministic data set anchored at now: orders are
// spread over the last six months with every status represented.
func sampleCatalog(now time.Time) ([]report.Product, []report.Customer, []report.Order) {
	products := make([]report.Product, 0, len(sampleProducts))
	for i, p := range sampleProducts {
		product := report.Product{
			ID:       p.id,
			Name:     p.name,
			Category: p.category,
			Price:    p.price,
			Cost:     p.cost,
			Stock:    p.stock,
			Views:    (i + 1) * 37,
			Rating:   3.5 + float64(i%4)*0.5,
		}
		if i%3 == 0 {
			promo := p.price * 9 / 10
			start := now.AddDate(0, 0, -3)
			end := now.AddDate(0, 0, 4)
			product.PromoPrice, product.PromoStart, product.PromoEnd = &promo, &start, &end
		}
		products = append(products, product)
	}

	statuses := report.Statuses()
	customers := make([]report.Customer, 0, len(sampleCustomers))
	var orders []report.Order

	for ci, c := range sampleCustomers {
		customer := report.Customer{
			ID:               c.id,
			Name:             c.name,
			Email:            c.email,
			RegisteredAt:     now.AddDate(0, 0, -c.registeredDaysAgo),
			ProfileCompleted: ci%2 == 0,
		}

		// the newest customer never buys
		orderCount := len(sampleCustomers) - ci - 1
		for n := 0; n < orderCount; n++ {
			orderedAt := now.AddDate(0, 0, -(n*29 + ci*3 + 1))
			first := sampleProducts[(ci+n)%len(sampleProducts)]
			second := sampleProducts[(ci+2*n+3)%len(sampleProducts)]
			items := []report.OrderItem{
				{ProductID: first.id, Name: first.name, Category: first.category, Quantity: 1 + n%3, UnitPrice: first.price},
				{ProductID: second.id, Name: second.name, Category: second.category, Quantity: 1, UnitPrice: second.price},
			}

			var total report.Money
			for _, item := range items {
				total += item.Subtotal()
			}

			order := report.Order{
				ID:         fmt.Sprintf("o-%s-%02d", c.id[2:], n+1),
				CustomerID: c.id,
				Items:      items,
				Total:      total,
				Status:     statuses[(ci+2*n)%len(statuses)],
				OrderedAt:  orderedAt,
			}
			orders = append(orders, order)

			if order.Status != report.StatusCancelado {
				customer.OrderCount++
				customer.TotalSpent += total
				if customer.LastPurchaseAt == nil || orderedAt.After(*customer.LastPurchaseAt) {
					at := orderedAt
					customer.LastPurchaseAt = &at
				}
			}
		}
		customers = append(customers, customer)
	}

	return products, customers, orders
}
