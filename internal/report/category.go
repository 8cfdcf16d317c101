package report

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

type CategoryOptions struct {
	// IncludeEmpty fills Empty with catalog categories that sold nothing.
	IncludeEmpty bool
	Location     *time.Location
}

type CategoryShare struct {
	Category string  `json:"category"`
	Revenue  Money   `json:"revenue"`
	Products int     `json:"products"`
	Quantity int     `json:"quantity"`
	Share    Percent `json:"share"`
}

type CategoryBreakdown struct {
	Categories   []CategoryShare `json:"categories"`
	Empty        []string        `json:"empty"`
	Total        Money           `json:"total"`
	Unclassified int             `json:"unclassified"`
}

type categoryAcc struct {
	revenue  Money
	quantity int
	products map[string]struct{}
}

// CategoryDistribution sums item revenue per category over the non
// cancelled orders of r. An item without a category takes its product's
// category; items that still have none, or carry a non positive quantity
// or a negative price, are unclassified. Categories are ordered by revenue
// descending, then name.
func CategoryDistribution(orders []Order, products []Product, r DateRange, opts CategoryOptions) CategoryBreakdown {
	out := CategoryBreakdown{Categories: []CategoryShare{}, Empty: []string{}}

	catalog := lo.SliceToMap(products, func(p Product) (string, Product) { return p.ID, p })
	acc := map[string]*categoryAcc{}

	for _, o := range orders {
		class := o.classify()
		if class == orderUnclassified {
			if unclassifiedInRange(o, r, opts.Location) {
				out.Unclassified++
			}
			continue
		}
		if class == orderCancelled || !r.Contains(o.OrderedAt, opts.Location) {
			continue
		}

		for _, item := range o.Items {
			category := strings.TrimSpace(item.Category)
			if category == "" {
				category = strings.TrimSpace(catalog[item.ProductID].Category)
			}
			if category == "" || !item.valid() {
				out.Unclassified++
				continue
			}

			a, ok := acc[category]
			if !ok {
				a = &categoryAcc{products: map[string]struct{}{}}
				acc[category] = a
			}
			a.revenue += item.Subtotal()
			a.quantity += item.Quantity
			key := item.ProductID
			if key == "" {
				key = item.Name
			}
			a.products[key] = struct{}{}
		}
	}

	for name, a := range acc {
		if a.revenue == 0 {
			continue
		}
		out.Total += a.revenue
		out.Categories = append(out.Categories, CategoryShare{
			Category: name,
			Revenue:  a.revenue,
			Products: len(a.products),
			Quantity: a.quantity,
		})
	}
	for i := range out.Categories {
		out.Categories[i].Share = Ratio(int64(out.Categories[i].Revenue), int64(out.Total))
	}
	sort.SliceStable(out.Categories, func(i, j int) bool {
		a, b := out.Categories[i], out.Categories[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.Category < b.Category
	})

	if opts.IncludeEmpty {
		names := lo.Uniq(lo.FilterMap(products, func(p Product, _ int) (string, bool) {
			c := strings.TrimSpace(p.Category)
			return c, c != ""
		}))
		for name, a := range acc {
			if a.revenue == 0 {
				names = append(names, name)
			}
		}
		out.Empty = lo.Filter(lo.Uniq(names), func(name string, _ int) bool {
			a, sold := acc[name]
			return !sold || a.revenue == 0
		})
		sort.Strings(out.Empty)
	}
	return out
}
