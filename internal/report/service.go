package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Filter narrows a fetch. Equals holds equality predicates on collection
// fields; Range bounds a time field (inclusive). Stores reject field names
// they do not know.
type Filter struct {
	Equals map[string]any
	Range  *TimeRange
}

// TimeRange bounds Field inclusively. A zero From or To leaves that side open.
type TimeRange struct {
	Field string
	From  time.Time
	To    time.Time
}

var ErrUnknownFilterField = errors.New("unknown filter field")

// RecordStore fetches commerce records. Results come back in no particular
// order.
type RecordStore interface {
	FetchOrders(ctx context.Context, filter Filter) ([]Order, error)
	FetchProducts(ctx context.Context, filter Filter) ([]Product, error)
	FetchCustomers(ctx context.Context, filter Filter) ([]Customer, error)
}

// StoreError wraps a failed fetch so callers can tell it from bad input.
type StoreError struct {
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

type Options struct {
	Location       *time.Location
	Stock          StockOptions
	InactivityDays int
	TrailingMonths int
	VIPTopK        int
	TopProducts    int
	FetchTimeout   time.Duration
}

type Service struct {
	store  RecordStore
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store RecordStore, opts Options, logger *slog.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, opts: opts, logger: logger, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Location() *time.Location { return s.opts.Location }

// Now returns the service clock in the report location.
func (s *Service) Now() time.Time { return s.now().In(s.opts.Location) }

type fetchPlan struct {
	orders    *Filter
	products  *Filter
	customers *Filter
}

type records struct {
	orders    []Order
	products  []Product
	customers []Customer
}

// fetch loads the requested collections concurrently. The first failure
// cancels the others.
func (s *Service) fetch(ctx context.Context, plan fetchPlan) (records, error) {
	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}

	var out records
	g, gctx := errgroup.WithContext(ctx)

	if plan.orders != nil {
		g.Go(func() error {
			rows, err := s.store.FetchOrders(gctx, *plan.orders)
			if err != nil {
				return &StoreError{Collection: "orders", Err: err}
			}
			out.orders = rows
			return nil
		})
	}
	if plan.products != nil {
		g.Go(func() error {
			rows, err := s.store.FetchProducts(gctx, *plan.products)
			if err != nil {
				return &StoreError{Collection: "products", Err: err}
			}
			out.products = rows
			return nil
		})
	}
	if plan.customers != nil {
		g.Go(func() error {
			rows, err := s.store.FetchCustomers(gctx, *plan.customers)
			if err != nil {
				return &StoreError{Collection: "customers", Err: err}
			}
			out.customers = rows
			return nil
		})
	}

	start := time.Now()
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "record fetch failed", "error", err)
		return records{}, err
	}
	s.logger.DebugContext(ctx, "records fetched",
		"orders", len(out.orders),
		"products", len(out.products),
		"customers", len(out.customers),
		"duration", time.Since(start))
	return out, nil
}

func (s *Service) ordersIn(r DateRange) *Filter {
	from, to := r.Instants(s.opts.Location)
	return &Filter{Range: &TimeRange{Field: "ordered_at", From: from, To: to}}
}

func all() *Filter { return &Filter{} }

func (s *Service) Sales(ctx context.Context, r DateRange) (SalesSeries, error) {
	recs, err := s.fetch(ctx, fetchPlan{orders: s.ordersIn(r)})
	if err != nil {
		return SalesSeries{}, err
	}
	return SalesOverTime(recs.orders, r, s.opts.Location), nil
}

func (s *Service) Categories(ctx context.Context, r DateRange, includeEmpty bool) (CategoryBreakdown, error) {
	recs, err := s.fetch(ctx, fetchPlan{orders: s.ordersIn(r), products: all()})
	if err != nil {
		return CategoryBreakdown{}, err
	}
	return CategoryDistribution(recs.orders, recs.products, r, CategoryOptions{
		IncludeEmpty: includeEmpty,
		Location:     s.opts.Location,
	}), nil
}

// Monthly compares the trailing months; months <= 0 uses the configured count.
func (s *Service) Monthly(ctx context.Context, months int) (MonthlyTrend, error) {
	if months <= 0 {
		months = s.opts.TrailingMonths
	}
	if months > MaxMonths {
		return MonthlyTrend{}, ErrMonthsOutOfRange
	}
	opts := MonthlyOptions{Months: months, Location: s.opts.Location}
	now := s.Now()
	from, to := MonthRange(now, opts)

	recs, err := s.fetch(ctx, fetchPlan{orders: &Filter{Range: &TimeRange{Field: "ordered_at", From: from, To: to}}})
	if err != nil {
		return MonthlyTrend{}, err
	}
	return MonthlyComparison(recs.orders, now, opts), nil
}

func (s *Service) Customers(ctx context.Context, topK int) (CustomerSegments, error) {
	if topK <= 0 {
		topK = s.opts.VIPTopK
	}
	recs, err := s.fetch(ctx, fetchPlan{orders: all(), customers: all()})
	if err != nil {
		return CustomerSegments{}, err
	}
	return SegmentCustomers(recs.customers, recs.orders, s.Now(), SegmentOptions{
		TopK:           topK,
		InactivityDays: s.opts.InactivityDays,
	}), nil
}

func (s *Service) Stock(ctx context.Context) (StockReport, error) {
	recs, err := s.fetch(ctx, fetchPlan{products: all()})
	if err != nil {
		return StockReport{}, err
	}
	return DetectLowStock(recs.products, s.opts.Stock), nil
}

func (s *Service) Ticket(ctx context.Context, r DateRange) (TicketSummary, error) {
	_, to := r.Instants(s.opts.Location)
	recs, err := s.fetch(ctx, fetchPlan{
		orders:    s.ordersIn(r),
		customers: &Filter{Range: &TimeRange{Field: "registered_at", To: to}},
	})
	if err != nil {
		return TicketSummary{}, err
	}
	return Ticket(recs.orders, recs.customers, r, s.opts.Location), nil
}

func (s *Service) TopProducts(ctx context.Context, r DateRange, limit int) (TopProductsResult, error) {
	if limit <= 0 {
		limit = s.opts.TopProducts
	}
	recs, err := s.fetch(ctx, fetchPlan{orders: s.ordersIn(r), products: all()})
	if err != nil {
		return TopProductsResult{}, err
	}
	return TopProducts(recs.orders, recs.products, r, TopProductsOptions{Limit: limit, Location: s.opts.Location}), nil
}

func (s *Service) Dashboard(ctx context.Context) (Overview, error) {
	recs, err := s.fetch(ctx, fetchPlan{orders: all(), products: all(), customers: all()})
	if err != nil {
		return Overview{}, err
	}
	return DashboardOverview(recs.orders, recs.products, recs.customers, s.Now(), OverviewOptions{Stock: s.opts.Stock}), nil
}
