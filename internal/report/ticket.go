package report

import (
	"time"

	"github.com/samber/lo"
)

type TicketSummary struct {
	Revenue            Money   `json:"revenue"`
	Orders             int     `json:"orders"`
	AverageTicket      Money   `json:"average_ticket"`
	ConvertedCustomers int     `json:"converted_customers"`
	KnownCustomers     int     `json:"known_customers"`
	ConversionRate     Percent `json:"conversion_rate"`
	Cancelled          int     `json:"cancelled"`
	Unclassified       int     `json:"unclassified"`
}

// Ticket computes the average ticket of the non cancelled orders in r and
// the conversion rate: customers with a delivered order divided by every
// customer known for the period, which is the supplied customers plus any
// customer that placed an order in r.
func Ticket(orders []Order, customers []Customer, r DateRange, loc *time.Location) TicketSummary {
	out := TicketSummary{}

	known := lo.SliceToMap(
		lo.Filter(customers, func(c Customer, _ int) bool { return c.ID != "" }),
		func(c Customer) (string, struct{}) { return c.ID, struct{}{} },
	)
	converted := map[string]struct{}{}

	for _, o := range orders {
		class := o.classify()
		if class == orderUnclassified {
			if unclassifiedInRange(o, r, loc) {
				out.Unclassified++
			}
			continue
		}
		if !r.Contains(o.OrderedAt, loc) {
			continue
		}
		if o.CustomerID != "" {
			known[o.CustomerID] = struct{}{}
		}
		if class == orderCancelled {
			out.Cancelled++
			continue
		}

		out.Revenue += o.Total
		out.Orders++
		if o.Status == StatusEntregue && o.CustomerID != "" {
			converted[o.CustomerID] = struct{}{}
		}
	}

	out.AverageTicket = out.Revenue.Div(out.Orders)
	out.KnownCustomers = len(known)
	out.ConvertedCustomers = len(converted)
	out.ConversionRate = Ratio(int64(out.ConvertedCustomers), int64(out.KnownCustomers))
	return out
}
