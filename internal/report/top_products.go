package report

import (
	"sort"
	"time"
)

type TopProductsOptions struct {
	Limit    int
	Location *time.Location
}

type ProductRank struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	Revenue   Money  `json:"revenue"`
}

type TopProductsResult struct {
	Products     []ProductRank `json:"products"`
	Unclassified int           `json:"unclassified"`
}

// TopProducts ranks products sold in r by revenue, then quantity, then name.
// Names and categories come from the catalog when the product is known.
func TopProducts(orders []Order, products []Product, r DateRange, opts TopProductsOptions) TopProductsResult {
	out := TopProductsResult{Products: []ProductRank{}}
	if opts.Limit < 1 {
		return out
	}

	catalog := make(map[string]Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	ranks := map[string]*ProductRank{}
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
			if item.ProductID == "" || !item.valid() {
				out.Unclassified++
				continue
			}
			rank, ok := ranks[item.ProductID]
			if !ok {
				rank = &ProductRank{ProductID: item.ProductID, Name: item.Name, Category: item.Category}
				if p, known := catalog[item.ProductID]; known {
					rank.Name, rank.Category = p.Name, p.Category
				}
				ranks[item.ProductID] = rank
			}
			rank.Quantity += item.Quantity
			rank.Revenue += item.Subtotal()
		}
	}

	for _, rank := range ranks {
		out.Products = append(out.Products, *rank)
	}
	sort.SliceStable(out.Products, func(i, j int) bool {
		a, b := out.Products[i], out.Products[j]
		switch {
		case a.Revenue != b.Revenue:
			return a.Revenue > b.Revenue
		case a.Quantity != b.Quantity:
			return a.Quantity > b.Quantity
		case a.Name != b.Name:
			return a.Name < b.Name
		}
		return a.ProductID < b.ProductID
	})
	if len(out.Products) > opts.Limit {
		out.Products = out.Products[:opts.Limit]
	}
	return out
}
