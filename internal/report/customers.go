package report

import (
	"sort"
	"time"
)

type SegmentOptions struct {
	TopK           int
	InactivityDays int
}

type CustomerRank struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	TotalSpent        Money      `json:"total_spent"`
	Orders            int        `json:"orders"`
	RegisteredAt      time.Time  `json:"registered_at"`
	LastPurchaseAt    *time.Time `json:"last_purchase_at,omitempty"`
	DaysSincePurchase int        `json:"days_since_purchase"`
}

type CustomerSegments struct {
	VIP            []CustomerRank `json:"vip"`
	Inactive       []CustomerRank `json:"inactive"`
	NeverPurchased []CustomerRank `json:"never_purchased"`
	Unclassified   int            `json:"unclassified"`
}

// SegmentCustomers ranks customers by cumulative spend and flags the ones
// whose last purchase is older than opts.InactivityDays.
//
// VIP holds the top opts.TopK customers with positive spend, spend
// descending, then earlier registration, then id. Customers flagged inactive
// on their record never enter VIP. The last purchase comes from the record
// and falls back to the newest non cancelled order. Customers with no
// purchase at all go to NeverPurchased, and records with no id or a negative
// spend are unclassified. A missing registration date ranks after any known
// one.
func SegmentCustomers(customers []Customer, orders []Order, now time.Time, opts SegmentOptions) CustomerSegments {
	out := CustomerSegments{VIP: []CustomerRank{}, Inactive: []CustomerRank{}, NeverPurchased: []CustomerRank{}}

	latest := map[string]time.Time{}
	for _, o := range orders {
		if o.classify() != orderCounted || o.CustomerID == "" {
			continue
		}
		if o.OrderedAt.After(latest[o.CustomerID]) {
			latest[o.CustomerID] = o.OrderedAt
		}
	}

	cutoff := now.AddDate(0, 0, -opts.InactivityDays)
	vip := []CustomerRank{}

	for _, c := range customers {
		if c.ID == "" || c.TotalSpent < 0 {
			out.Unclassified++
			continue
		}

		rank := CustomerRank{
			ID:             c.ID,
			Name:           c.Name,
			Email:          c.Email,
			TotalSpent:     c.TotalSpent,
			Orders:         c.OrderCount,
			RegisteredAt:   c.RegisteredAt,
			LastPurchaseAt: c.LastPurchaseAt,
		}
		if t, ok := latest[c.ID]; ok && (rank.LastPurchaseAt == nil || t.After(*rank.LastPurchaseAt)) {
			rank.LastPurchaseAt = &t
		}

		if c.IsActive() && c.TotalSpent > 0 {
			vip = append(vip, rank)
		}

		switch {
		case rank.LastPurchaseAt == nil:
			out.NeverPurchased = append(out.NeverPurchased, rank)
		case rank.LastPurchaseAt.Before(cutoff):
			rank.DaysSincePurchase = int(now.Sub(*rank.LastPurchaseAt).Hours() / 24)
			out.Inactive = append(out.Inactive, rank)
		}
	}

	sort.SliceStable(vip, func(i, j int) bool {
		a, b := vip[i], vip[j]
		if a.TotalSpent != b.TotalSpent {
			return a.TotalSpent > b.TotalSpent
		}
		if !a.RegisteredAt.Equal(b.RegisteredAt) {
			return registeredEarlier(a.RegisteredAt, b.RegisteredAt)
		}
		return a.ID < b.ID
	})
	if opts.TopK > 0 && len(vip) > opts.TopK {
		vip = vip[:opts.TopK]
	}
	if opts.TopK > 0 {
		out.VIP = vip
	}

	sort.SliceStable(out.Inactive, func(i, j int) bool {
		a, b := out.Inactive[i], out.Inactive[j]
		if !a.LastPurchaseAt.Equal(*b.LastPurchaseAt) {
			return a.LastPurchaseAt.Before(*b.LastPurchaseAt)
		}
		return a.ID < b.ID
	})
	sort.SliceStable(out.NeverPurchased, func(i, j int) bool {
		a, b := out.NeverPurchased[i], out.NeverPurchased[j]
		if !a.RegisteredAt.Equal(b.RegisteredAt) {
			return registeredEarlier(a.RegisteredAt, b.RegisteredAt)
		}
		return a.ID < b.ID
	})
	return out
}

// registeredEarlier orders an unknown registration date last.
func registeredEarlier(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	}
	return a.Before(b)
}
