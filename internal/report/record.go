package report

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	StatusPendente   OrderStatus = "pendente"
	StatusConfirmado OrderStatus = "confirmado"
	StatusPreparando OrderStatus = "preparando"
	StatusEmEntrega  OrderStatus = "em_entrega"
	StatusEntregue   OrderStatus = "entregue"
	StatusCancelado  OrderStatus = "cancelado"
)

func Statuses() []OrderStatus {
	return []OrderStatus{StatusPendente, StatusConfirmado, StatusPreparando, StatusEmEntrega, StatusEntregue, StatusCancelado}
}

func (s OrderStatus) Known() bool {
	switch s {
	case StatusPendente, StatusConfirmado, StatusPreparando, StatusEmEntrega, StatusEntregue, StatusCancelado:
		return true
	}
	return false
}

type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
}

func (i OrderItem) Subtotal() Money { return i.UnitPrice.Mul(i.Quantity) }

func (i OrderItem) valid() bool {
	return i.Quantity > 0 && i.UnitPrice >= 0
}

type Order struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	Items      []OrderItem `json:"items"`
	Total      Money       `json:"total"`
	Status     OrderStatus `json:"status"`
	OrderedAt  time.Time   `json:"ordered_at"`
}

// classify sorts an order into one of three outcomes: revenue (counted),
// cancelled, or unclassified when a required field is missing or invalid.
func (o Order) classify() orderClass {
	switch {
	case o.OrderedAt.IsZero(), o.Total < 0, !o.Status.Known():
		return orderUnclassified
	case o.Status == StatusCancelado:
		return orderCancelled
	}
	return orderCounted
}

type orderClass int

const (
	orderCounted orderClass = iota
	orderCancelled
	orderUnclassified
)

type Product struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	Price      Money      `json:"price"`
	Cost       Money      `json:"cost"`
	Stock      int        `json:"stock"`
	PromoPrice *Money     `json:"promo_price,omitempty"`
	PromoStart *time.Time `json:"promo_start,omitempty"`
	PromoEnd   *time.Time `json:"promo_end,omitempty"`
	Views      int        `json:"views"`
	Rating     float64    `json:"rating"`
	Active     *bool      `json:"active,omitempty"`
}

// IsActive treats a missing flag as active.
func (p Product) IsActive() bool { return p.Active == nil || *p.Active }

// OnPromotion reports whether a promotional price below the list price is
// in effect at t. Open ended windows are allowed on either side.
func (p Product) OnPromotion(t time.Time) bool {
	if p.PromoPrice == nil || *p.PromoPrice >= p.Price {
		return false
	}
	if p.PromoStart != nil && t.Before(*p.PromoStart) {
		return false
	}
	if p.PromoEnd != nil && t.After(*p.PromoEnd) {
		return false
	}
	return true
}

// Customer is a storefront customer. A record without the Active flag is an
// active customer; read it through IsActive.
type Customer struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone,omitempty"`
	RegisteredAt     time.Time  `json:"registered_at"`
	Active           *bool      `json:"active,omitempty"`
	ProfileCompleted bool       `json:"profile_completed"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	OrderCount       int        `json:"order_count"`
	TotalSpent       Money      `json:"total_spent"`
	LastPurchaseAt   *time.Time `json:"last_purchase_at,omitempty"`
}

func (c Customer) IsActive() bool { return c.Active == nil || *c.Active }

var ErrInvalidDateRange = errors.New("invalid date range")

// MaxRangeDays bounds the number of daily buckets a single range may produce.
const MaxRangeDays = 3660

// DateRange is an inclusive range of calendar days. Only the calendar date
// of Start and End matters; each call anchors those dates in its location.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, errors.Join(ErrInvalidDateRange, errors.New("start and end are required"))
	}
	r := DateRange{Start: start, End: end}
	first, last := r.bounds(time.UTC)
	if last.Before(first) {
		return DateRange{}, errors.Join(ErrInvalidDateRange, errors.New("end is before start"))
	}
	if last.Sub(first) > MaxRangeDays*24*time.Hour {
		return DateRange{}, errors.Join(ErrInvalidDateRange, errors.New("range too long"))
	}
	return r, nil
}

// LastDays returns the n calendar days ending on the day of now.
func LastDays(now time.Time, n int, loc *time.Location) DateRange {
	if n < 1 {
		n = 1
	}
	end := startOfDay(now, loc)
	return DateRange{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

func (r DateRange) bounds(loc *time.Location) (time.Time, time.Time) {
	return dateIn(r.Start, loc), dateIn(r.End, loc)
}

// dateIn keeps the calendar date of t and moves it to midnight in loc.
func dateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Contains reports whether t falls on one of the range's days.
func (r DateRange) Contains(t time.Time, loc *time.Location) bool {
	first, last := r.bounds(loc)
	day := startOfDay(t, loc)
	return !day.Before(first) && !day.After(last)
}

// Days lists the midnight of every day in the range.
func (r DateRange) Days(loc *time.Location) []time.Time {
	first, last := r.bounds(loc)
	days := []time.Time{}
	for d := first; !d.After(last) && len(days) <= MaxRangeDays; d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Instants returns the first and last instant covered by the range, for
// pushing the range down to a store.
func (r DateRange) Instants(loc *time.Location) (time.Time, time.Time) {
	first, last := r.bounds(loc)
	return first, last.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func startOfMonth(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, _ := t.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}
