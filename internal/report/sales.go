package report

import "time"

type DailySales struct {
	Date   string `json:"date"`
	Total  Money  `json:"total"`
	Orders int    `json:"orders"`
}

type SalesSeries struct {
	Days         []DailySales `json:"days"`
	Total        Money        `json:"total"`
	Orders       int          `json:"orders"`
	Cancelled    int          `json:"cancelled"`
	Unclassified int          `json:"unclassified"`
}

// SalesOverTime buckets orders per calendar day of r in loc. Every day of the
// range gets an entry, zero-filled when nothing was sold. Cancelled orders
// are left out of the sums; orders with an unknown status, a negative total
// or no date are counted as unclassified.
func SalesOverTime(orders []Order, r DateRange, loc *time.Location) SalesSeries {
	days := r.Days(loc)
	out := SalesSeries{Days: make([]DailySales, len(days))}
	index := make(map[time.Time]int, len(days))
	for i, d := range days {
		out.Days[i] = DailySales{Date: d.Format(time.DateOnly)}
		index[d] = i
	}

	for _, o := range orders {
		class := o.classify()
		if class == orderUnclassified {
			if unclassifiedInRange(o, r, loc) {
				out.Unclassified++
			}
			continue
		}
		i, ok := index[startOfDay(o.OrderedAt, loc)]
		if !ok {
			continue
		}
		if class == orderCancelled {
			out.Cancelled++
			continue
		}
		out.Days[i].Total += o.Total
		out.Days[i].Orders++
		out.Total += o.Total
		out.Orders++
	}
	return out
}

// unclassifiedInRange attributes a malformed order to r unless its date
// places it outside. Orders without a date always count.
func unclassifiedInRange(o Order, r DateRange, loc *time.Location) bool {
	return o.OrderedAt.IsZero() || r.Contains(o.OrderedAt, loc)
}
