package report

import (
	"time"

	"github.com/samber/lo"
)

type OverviewOptions struct {
	Stock StockOptions
}

type Overview struct {
	Products           int                 `json:"products"`
	ActiveProducts     int                 `json:"active_products"`
	OnPromotion        int                 `json:"on_promotion"`
	LowStock           int                 `json:"low_stock"`
	OutOfStock         int                 `json:"out_of_stock"`
	Customers          int                 `json:"customers"`
	ActiveCustomers    int                 `json:"active_customers"`
	IncompleteProfiles int                 `json:"incomplete_profiles"`
	Orders             int                 `json:"orders"`
	OrdersByStatus     map[OrderStatus]int `json:"orders_by_status"`
	Revenue            Money               `json:"revenue"`
	AverageTicket      Money               `json:"average_ticket"`
	Unclassified       int                 `json:"unclassified"`
}

// DashboardOverview summarises the catalog, the customer base and every
// supplied order. OrdersByStatus always lists each known status.
func DashboardOverview(orders []Order, products []Product, customers []Customer, now time.Time, opts OverviewOptions) Overview {
	out := Overview{
		Products:           len(products),
		ActiveProducts:     lo.CountBy(products, Product.IsActive),
		OnPromotion:        lo.CountBy(products, func(p Product) bool { return p.OnPromotion(now) }),
		Customers:          len(customers),
		ActiveCustomers:    lo.CountBy(customers, Customer.IsActive),
		IncompleteProfiles: lo.CountBy(customers, func(c Customer) bool { return !c.ProfileCompleted }),
		OrdersByStatus:     make(map[OrderStatus]int, len(Statuses())),
	}
	for _, s := range Statuses() {
		out.OrdersByStatus[s] = 0
	}

	stock := DetectLowStock(products, opts.Stock)
	out.LowStock = len(stock.Low)
	out.OutOfStock = len(stock.OutOfStock)

	counted := 0
	for _, o := range orders {
		switch o.classify() {
		case orderUnclassified:
			out.Unclassified++
			continue
		case orderCounted:
			out.Revenue += o.Total
			counted++
		}
		out.Orders++
		out.OrdersByStatus[o.Status]++
	}
	out.AverageTicket = out.Revenue.Div(counted)
	return out
}
