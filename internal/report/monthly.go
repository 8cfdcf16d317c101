package report

import (
	"errors"
	"time"
)

// MaxMonths bounds the monthly window a caller may request.
const MaxMonths = 60

var ErrMonthsOutOfRange = errors.New("months must be at most 60")

type MonthlyOptions struct {
	Months   int
	Location *time.Location
}

type MonthBucket struct {
	Month     string `json:"month"`
	Orders    int    `json:"orders"`
	Revenue   Money  `json:"revenue"`
	Customers int    `json:"customers"`
}

type MonthlyTrend struct {
	Months       []MonthBucket `json:"months"`
	Growth       Percent       `json:"growth"`
	Unclassified int           `json:"unclassified"`
}

// MonthlyComparison buckets non cancelled orders into the opts.Months
// calendar months ending with the month of now, oldest first. Growth compares
// revenue of the last two buckets and is 0 when the earlier one is 0.
func MonthlyComparison(orders []Order, now time.Time, opts MonthlyOptions) MonthlyTrend {
	out := MonthlyTrend{Months: []MonthBucket{}}
	if opts.Months < 1 {
		return out
	}

	current := startOfMonth(now, opts.Location)
	first := current.AddDate(0, -(opts.Months - 1), 0)
	end := current.AddDate(0, 1, 0)

	out.Months = make([]MonthBucket, opts.Months)
	customers := make([]map[string]struct{}, opts.Months)
	index := make(map[time.Time]int, opts.Months)
	for i := 0; i < opts.Months; i++ {
		m := first.AddDate(0, i, 0)
		out.Months[i] = MonthBucket{Month: m.Format("2006-01")}
		customers[i] = map[string]struct{}{}
		index[m] = i
	}

	for _, o := range orders {
		class := o.classify()
		if class == orderUnclassified {
			if o.OrderedAt.IsZero() || (!o.OrderedAt.Before(first) && o.OrderedAt.Before(end)) {
				out.Unclassified++
			}
			continue
		}
		if class == orderCancelled {
			continue
		}
		i, ok := index[startOfMonth(o.OrderedAt, opts.Location)]
		if !ok {
			continue
		}
		out.Months[i].Orders++
		out.Months[i].Revenue += o.Total
		if o.CustomerID != "" {
			customers[i][o.CustomerID] = struct{}{}
		}
	}

	for i := range out.Months {
		out.Months[i].Customers = len(customers[i])
	}
	if n := len(out.Months); n >= 2 {
		out.Growth = Growth(out.Months[n-1].Revenue, out.Months[n-2].Revenue)
	}
	return out
}

// MonthRange returns the instants covered by the trailing months, for
// pushing the window down to a store.
func MonthRange(now time.Time, opts MonthlyOptions) (time.Time, time.Time) {
	months := max(opts.Months, 1)
	current := startOfMonth(now, opts.Location)
	return current.AddDate(0, -(months - 1), 0), current.AddDate(0, 1, 0).Add(-time.Nanosecond)
}
