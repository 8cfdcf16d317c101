package report

import (
	"context"
	"errors"
	"fmt"
)

type Kind string

const (
	KindSales       Kind = "sales"
	KindCategories  Kind = "categories"
	KindMonthly     Kind = "monthly"
	KindCustomers   Kind = "customers"
	KindStock       Kind = "stock"
	KindTicket      Kind = "ticket"
	KindTopProducts Kind = "top-products"
	KindDashboard   Kind = "dashboard"
)

var ErrUnknownKind = errors.New("unknown report kind")

func Kinds() []Kind {
	return []Kind{KindSales, KindCategories, KindMonthly, KindCustomers, KindStock, KindTicket, KindTopProducts, KindDashboard}
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Params carries per request knobs. Zero values fall back to the service
// options; Range is required by the ranged reports.
type Params struct {
	Range        DateRange
	Months       int
	Limit        int
	IncludeEmpty bool
}

// Run builds the report of the given kind.
func (s *Service) Run(ctx context.Context, kind Kind, p Params) (any, error) {
	switch kind {
	case KindSales:
		return s.Sales(ctx, p.Range)
	case KindCategories:
		return s.Categories(ctx, p.Range, p.IncludeEmpty)
	case KindMonthly:
		return s.Monthly(ctx, p.Months)
	case KindCustomers:
		return s.Customers(ctx, p.Limit)
	case KindStock:
		return s.Stock(ctx)
	case KindTicket:
		return s.Ticket(ctx, p.Range)
	case KindTopProducts:
		return s.TopProducts(ctx, p.Range, p.Limit)
	case KindDashboard:
		return s.Dashboard(ctx)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
}
