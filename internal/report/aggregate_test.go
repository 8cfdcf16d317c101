package report_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/mercado-facil/internal/report"
)

var _ = Describe("SalesOverTime", func() {
	It("zero-fills every day of an empty range", func() {
		series := report.SalesOverTime(nil, mustRange("2025-03-01", "2025-03-07"), time.UTC)
		Expect(series.Days).To(HaveLen(7))
		for _, d := range series.Days {
			Expect(d.Orders).To(BeZero())
			Expect(d.Total).To(BeZero())
		}
		Expect(series.Days[0].Date).To(Equal("2025-03-01"))
		Expect(series.Days[6].Date).To(Equal("2025-03-07"))
	})

	It("excludes cancelled orders and counts unknown statuses as unclassified", func() {
		orders := []report.Order{
			order("o1", "c1", 10000, report.StatusEntregue, "2025-03-02 10:00:00"),
			order("o2", "c1", 5000, report.StatusCancelado, "2025-03-02 11:00:00"),
			order("o3", "c2", 2500, report.StatusPendente, "2025-03-02 23:30:00"),
			order("o4", "c3", 7000, "", "2025-03-03 09:00:00"),
			order("o5", "c3", 7000, "estornado", "2025-03-03 09:00:00"),
			order("o6", "c3", 9999, report.StatusEntregue, "2025-04-01 09:00:00"),
			order("o7", "c3", 100, report.StatusEntregue, ""),
		}
		series := report.SalesOverTime(orders, mustRange("2025-03-01", "2025-03-03"), time.UTC)

		Expect(series.Days[1]).To(Equal(report.DailySales{Date: "2025-03-02", Total: 12500, Orders: 2}))
		Expect(series.Total).To(Equal(report.Money(12500)))
		Expect(series.Orders).To(Equal(2))
		Expect(series.Cancelled).To(Equal(1))
		Expect(series.Unclassified).To(Equal(3))
	})

	It("buckets by calendar day in the given location", func() {
		saoPaulo := time.FixedZone("BRT", -3*60*60)
		orders := []report.Order{order("o1", "c1", 1000, report.StatusEntregue, "2025-03-02 01:00:00")}

		series := report.SalesOverTime(orders, mustRange("2025-03-01", "2025-03-02"), saoPaulo)
		Expect(series.Days[0].Orders).To(Equal(1))
		Expect(series.Days[1].Orders).To(Equal(0))
	})

	It("is deterministic", func() {
		orders := []report.Order{
			order("o1", "c1", 100, report.StatusEntregue, "2025-03-02 10:00:00"),
			order("o2", "c2", 200, report.StatusConfirmado, "2025-03-01 10:00:00"),
		}
		r := mustRange("2025-03-01", "2025-03-02")
		a, err := json.Marshal(report.SalesOverTime(orders, r, time.UTC))
		Expect(err).NotTo(HaveOccurred())
		b, err := json.Marshal(report.SalesOverTime([]report.Order{orders[1], orders[0]}, r, time.UTC))
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})
})

var _ = Describe("CategoryDistribution", func() {
	products := []report.Product{
		{ID: "p1", Name: "Arroz", Category: "mercearia"},
		{ID: "p2", Name: "Feijão", Category: "mercearia"},
		{ID: "p3", Name: "Sabão", Category: "limpeza"},
		{ID: "p4", Name: "Maçã", Category: "hortifruti"},
	}
	r := mustRange("2025-03-01", "2025-03-31")

	It("ranks categories by revenue and excludes zero revenue ones", func() {
		orders := []report.Order{
			order("o1", "c1", 0, report.StatusEntregue, "2025-03-02 10:00:00",
				item("p1", "mercearia", 2, 1000), item("p2", "", 1, 1500), item("p3", "limpeza", 1, 1500)),
			order("o2", "c2", 0, report.StatusCancelado, "2025-03-03 10:00:00", item("p4", "hortifruti", 10, 500)),
			order("o3", "c2", 0, report.StatusPendente, "2025-03-04 10:00:00", item("p4", "hortifruti", 1, 0)),
		}

		dist := report.CategoryDistribution(orders, products, r, report.CategoryOptions{})
		Expect(dist.Categories).To(HaveLen(2))
		Expect(dist.Categories[0].Category).To(Equal("mercearia"))
		Expect(dist.Categories[0].Revenue).To(Equal(report.Money(3500)))
		Expect(dist.Categories[0].Products).To(Equal(2))
		Expect(dist.Categories[1].Category).To(Equal("limpeza"))
		Expect(dist.Categories[0].Share.String()).To(Equal("70.0"))
		Expect(dist.Total).To(Equal(report.Money(5000)))
		Expect(dist.Empty).To(BeEmpty())
	})

	It("returns empty categories only on request", func() {
		orders := []report.Order{
			order("o1", "c1", 0, report.StatusEntregue, "2025-03-02 10:00:00", item("p1", "mercearia", 1, 1000)),
		}
		dist := report.CategoryDistribution(orders, products, r, report.CategoryOptions{IncludeEmpty: true})
		Expect(dist.Empty).To(Equal([]string{"hortifruti", "limpeza"}))
	})

	It("counts items without any category as unclassified", func() {
		orders := []report.Order{
			order("o1", "c1", 0, report.StatusEntregue, "2025-03-02 10:00:00", item("ghost", "", 1, 1000), item("p1", "", 0, 1000)),
		}
		dist := report.CategoryDistribution(orders, products, r, report.CategoryOptions{})
		Expect(dist.Categories).To(BeEmpty())
		Expect(dist.Unclassified).To(Equal(2))
	})
})

var _ = Describe("MonthlyComparison", func() {
	now := at("2025-06-15 12:00:00")

	It("returns zero growth when the previous month had no revenue", func() {
		orders := []report.Order{order("o1", "c1", 5000, report.StatusEntregue, "2025-06-01 10:00:00")}
		trend := report.MonthlyComparison(orders, now, report.MonthlyOptions{Months: 6, Location: time.UTC})

		Expect(trend.Months).To(HaveLen(6))
		Expect(trend.Months[0].Month).To(Equal("2025-01"))
		Expect(trend.Months[5].Month).To(Equal("2025-06"))
		Expect(trend.Growth).To(Equal(report.Percent(0)))

		raw, err := json.Marshal(trend)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"growth":0.0`))
	})

	It("buckets revenue, orders and distinct customers", func() {
		orders := []report.Order{
			order("o1", "c1", 10000, report.StatusEntregue, "2025-05-03 10:00:00"),
			order("o2", "c1", 10000, report.StatusEntregue, "2025-05-20 10:00:00"),
			order("o3", "c2", 15000, report.StatusConfirmado, "2025-06-02 10:00:00"),
			order("o4", "c3", 15000, report.StatusEmEntrega, "2025-06-03 10:00:00"),
			order("o5", "c4", 99999, report.StatusCancelado, "2025-06-04 10:00:00"),
			order("o6", "c5", 99999, report.StatusEntregue, "2024-12-31 10:00:00"),
		}
		trend := report.MonthlyComparison(orders, now, report.MonthlyOptions{Months: 2, Location: time.UTC})

		Expect(trend.Months).To(Equal([]report.MonthBucket{
			{Month: "2025-05", Orders: 2, Revenue: 20000, Customers: 1},
			{Month: "2025-06", Orders: 2, Revenue: 30000, Customers: 2},
		}))
		Expect(trend.Growth.String()).To(Equal("50.0"))
	})

	It("crosses year boundaries", func() {
		trend := report.MonthlyComparison(nil, at("2025-02-10 00:00:00"), report.MonthlyOptions{Months: 3, Location: time.UTC})
		Expect(trend.Months[0].Month).To(Equal("2024-12"))
	})

	It("returns an empty summary for a non positive window", func() {
		trend := report.MonthlyComparison(nil, now, report.MonthlyOptions{})
		Expect(trend.Months).NotTo(BeNil())
		Expect(trend.Months).To(BeEmpty())
	})
})

var _ = Describe("SegmentCustomers", func() {
	now := at("2025-06-30 12:00:00")

	It("breaks spend ties by earlier registration", func() {
		customers := []report.Customer{
			{ID: "late", TotalSpent: 300, RegisteredAt: day("2024-01-01")},
			{ID: "early", TotalSpent: 300, RegisteredAt: day("2023-01-01")},
			{ID: "big", TotalSpent: 500, RegisteredAt: day("2024-06-01")},
		}
		seg := report.SegmentCustomers(customers, nil, now, report.SegmentOptions{TopK: 3, InactivityDays: 90})

		ids := []string{}
		for _, c := range seg.VIP {
			ids = append(ids, c.ID)
		}
		Expect(ids).To(Equal([]string{"big", "early", "late"}))
	})

	It("ranks a customer without a registration date by spend", func() {
		customers := []report.Customer{
			{ID: "late", TotalSpent: 300, RegisteredAt: day("2024-01-01")},
			{ID: "early", TotalSpent: 300, RegisteredAt: day("2023-01-01")},
			{ID: "big", TotalSpent: 500},
		}
		seg := report.SegmentCustomers(customers, nil, now, report.SegmentOptions{TopK: 10, InactivityDays: 90})

		ids := []string{}
		for _, c := range seg.VIP {
			ids = append(ids, c.ID)
		}
		Expect(ids).To(Equal([]string{"big", "early", "late"}))
		Expect(seg.Unclassified).To(BeZero())
	})

	It("places an unknown registration date after known ones on a spend tie", func() {
		customers := []report.Customer{
			{ID: "a-undated", TotalSpent: 300},
			{ID: "b-dated", TotalSpent: 300, RegisteredAt: day("2024-01-01")},
			{ID: "c-undated", TotalSpent: 300},
		}
		seg := report.SegmentCustomers(customers, nil, now, report.SegmentOptions{TopK: 10, InactivityDays: 90})

		ids := []string{}
		for _, c := range seg.VIP {
			ids = append(ids, c.ID)
		}
		Expect(ids).To(Equal([]string{"b-dated", "a-undated", "c-undated"}))
	})

	It("keeps explicitly inactive customers out of VIP and treats a missing flag as active", func() {
		customers := []report.Customer{
			{ID: "off", TotalSpent: 900, RegisteredAt: day("2024-01-01"), Active: boolPtr(false)},
			{ID: "unset", TotalSpent: 100, RegisteredAt: day("2024-01-01")},
			{ID: "on", TotalSpent: 50, RegisteredAt: day("2024-01-01"), Active: boolPtr(true)},
		}
		seg := report.SegmentCustomers(customers, nil, now, report.SegmentOptions{TopK: 1, InactivityDays: 90})
		Expect(seg.VIP).To(HaveLen(1))
		Expect(seg.VIP[0].ID).To(Equal("unset"))
	})

	It("lists inactive customers most stale first", func() {
		customers := []report.Customer{
			{ID: "recent", TotalSpent: 100, RegisteredAt: day("2024-01-01"), LastPurchaseAt: timePtr(day("2025-06-01"))},
			{ID: "stale", TotalSpent: 100, RegisteredAt: day("2024-01-01"), LastPurchaseAt: timePtr(day("2025-01-01"))},
			{ID: "staler", TotalSpent: 100, RegisteredAt: day("2024-01-01"), LastPurchaseAt: timePtr(day("2024-10-01"))},
			{ID: "never", RegisteredAt: day("2024-02-01")},
			{ID: "broken", TotalSpent: -1, RegisteredAt: day("2024-01-01")},
		}
		seg := report.SegmentCustomers(customers, nil, now, report.SegmentOptions{TopK: 10, InactivityDays: 90})

		Expect(seg.Inactive).To(HaveLen(2))
		Expect(seg.Inactive[0].ID).To(Equal("staler"))
		Expect(seg.Inactive[1].ID).To(Equal("stale"))
		Expect(seg.Inactive[1].DaysSincePurchase).To(Equal(180))
		Expect(seg.NeverPurchased).To(HaveLen(1))
		Expect(seg.NeverPurchased[0].ID).To(Equal("never"))
		Expect(seg.Unclassified).To(Equal(1))
	})

	It("falls back to orders for the last purchase", func() {
		customers := []report.Customer{{ID: "c1", TotalSpent: 100, RegisteredAt: day("2024-01-01")}}
		orders := []report.Order{
			order("o1", "c1", 100, report.StatusEntregue, "2025-06-20 10:00:00"),
			order("o2", "c1", 100, report.StatusCancelado, "2025-06-25 10:00:00"),
		}
		seg := report.SegmentCustomers(customers, orders, now, report.SegmentOptions{TopK: 1, InactivityDays: 90})
		Expect(seg.NeverPurchased).To(BeEmpty())
		Expect(seg.Inactive).To(BeEmpty())
		Expect(*seg.VIP[0].LastPurchaseAt).To(Equal(at("2025-06-20 10:00:00")))
	})

	It("returns empty, non nil segments for empty input", func() {
		seg := report.SegmentCustomers(nil, nil, now, report.SegmentOptions{TopK: 5, InactivityDays: 90})
		Expect(seg.VIP).NotTo(BeNil())
		Expect(seg.Inactive).NotTo(BeNil())
		Expect(seg.NeverPurchased).NotTo(BeNil())
	})
})

var _ = Describe("DetectLowStock", func() {
	opts := report.StockOptions{Threshold: 10, CriticalRatio: 0.2, LowRatio: 0.6}

	It("separates out of stock from low stock", func() {
		products := []report.Product{
			{ID: "a", Name: "A", Stock: 0},
			{ID: "b", Name: "B", Stock: 5},
			{ID: "c", Name: "C", Stock: 15},
			{ID: "d", Name: "D", Stock: 50},
		}
		rep := report.DetectLowStock(products, opts)
		Expect(rep.OutOfStock).To(HaveLen(1))
		Expect(rep.OutOfStock[0].ProductID).To(Equal("a"))
		Expect(rep.Low).To(HaveLen(1))
		Expect(rep.Low[0].ProductID).To(Equal("b"))
	})

	DescribeTable("grades severity by configured bands",
		func(stock int, want report.Severity) {
			Expect(opts.Severity(stock)).To(Equal(want))
		},
		Entry("at the critical band", 2, report.SeverityCritico),
		Entry("inside the low band", 6, report.SeverityBaixo),
		Entry("just under the threshold", 9, report.SeverityAlerta),
	)

	It("sorts low stock ascending and counts negative stock as unclassified", func() {
		products := []report.Product{
			{ID: "x", Name: "X", Stock: 7},
			{ID: "y", Name: "Y", Stock: 1},
			{ID: "z", Name: "Z", Stock: -3},
		}
		rep := report.DetectLowStock(products, opts)
		Expect(rep.Low[0].ProductID).To(Equal("y"))
		Expect(rep.Low[0].Severity).To(Equal(report.SeverityCritico))
		Expect(rep.Low[1].Severity).To(Equal(report.SeverityAlerta))
		Expect(rep.Unclassified).To(Equal(1))
	})

	It("honours a different threshold", func() {
		rep := report.DetectLowStock([]report.Product{{ID: "c", Stock: 15}}, report.StockOptions{Threshold: 20, CriticalRatio: 0.2, LowRatio: 0.6})
		Expect(rep.Low).To(HaveLen(1))
		Expect(rep.Low[0].Severity).To(Equal(report.SeverityAlerta))
	})
})

var _ = Describe("Ticket", func() {
	r := mustRange("2025-03-01", "2025-03-31")

	It("excludes cancelled orders from both sum and count", func() {
		orders := []report.Order{
			order("o1", "c1", 100, report.StatusEntregue, "2025-03-02 10:00:00"),
			order("o2", "c2", 50, report.StatusCancelado, "2025-03-02 10:00:00"),
			order("o3", "c3", 200, report.StatusEntregue, "2025-03-03 10:00:00"),
		}
		t := report.Ticket(orders, nil, r, time.UTC)
		Expect(t.AverageTicket).To(Equal(report.Money(150)))
		Expect(t.Orders).To(Equal(2))
		Expect(t.Cancelled).To(Equal(1))
	})

	It("computes conversion over customers and order customers", func() {
		customers := []report.Customer{{ID: "c1"}, {ID: "c2"}, {ID: "c4"}, {ID: ""}}
		orders := []report.Order{
			order("o1", "c1", 100, report.StatusEntregue, "2025-03-02 10:00:00"),
			order("o2", "c3", 100, report.StatusPendente, "2025-03-02 10:00:00"),
		}
		t := report.Ticket(orders, customers, r, time.UTC)
		Expect(t.KnownCustomers).To(Equal(4))
		Expect(t.ConvertedCustomers).To(Equal(1))
		Expect(t.ConversionRate.String()).To(Equal("25.0"))
	})

	It("returns zeros for empty input", func() {
		t := report.Ticket(nil, nil, r, time.UTC)
		Expect(t).To(Equal(report.TicketSummary{}))
		Expect(t.ConversionRate.String()).To(Equal("0.0"))
	})
})

var _ = Describe("DashboardOverview", func() {
	now := at("2025-03-10 12:00:00")

	It("summarises catalog, customers and orders", func() {
		promo := report.Money(800)
		products := []report.Product{
			{ID: "p1", Price: 1000, PromoPrice: &promo, PromoStart: timePtr(day("2025-03-01")), PromoEnd: timePtr(day("2025-03-31")), Stock: 3},
			{ID: "p2", Price: 1000, PromoPrice: &promo, PromoEnd: timePtr(day("2025-03-01")), Stock: 0, Active: boolPtr(false)},
			{ID: "p3", Price: 1000, Stock: 40},
		}
		customers := []report.Customer{{ID: "c1", ProfileCompleted: true}, {ID: "c2", Active: boolPtr(false)}}
		orders := []report.Order{
			order("o1", "c1", 1000, report.StatusEntregue, "2025-03-02 10:00:00"),
			order("o2", "c1", 3000, report.StatusPendente, "2025-03-03 10:00:00"),
			order("o3", "c2", 9000, report.StatusCancelado, "2025-03-03 10:00:00"),
			order("o4", "c2", 9000, "lost", "2025-03-03 10:00:00"),
		}

		ov := report.DashboardOverview(orders, products, customers, now, report.OverviewOptions{
			Stock: report.StockOptions{Threshold: 10, CriticalRatio: 0.2, LowRatio: 0.6},
		})
		Expect(ov.Products).To(Equal(3))
		Expect(ov.ActiveProducts).To(Equal(2))
		Expect(ov.OnPromotion).To(Equal(1))
		Expect(ov.LowStock).To(Equal(1))
		Expect(ov.OutOfStock).To(Equal(1))
		Expect(ov.ActiveCustomers).To(Equal(1))
		Expect(ov.IncompleteProfiles).To(Equal(1))
		Expect(ov.Orders).To(Equal(3))
		Expect(ov.OrdersByStatus).To(HaveLen(6))
		Expect(ov.OrdersByStatus[report.StatusCancelado]).To(Equal(1))
		Expect(ov.Revenue).To(Equal(report.Money(4000)))
		Expect(ov.AverageTicket).To(Equal(report.Money(2000)))
		Expect(ov.Unclassified).To(Equal(1))
	})
})

var _ = Describe("TopProducts", func() {
	It("ranks by revenue then quantity and applies the limit", func() {
		orders := []report.Order{
			order("o1", "c1", 0, report.StatusEntregue, "2025-03-02 10:00:00",
				item("p1", "x", 1, 1000), item("p2", "x", 4, 250), item("p3", "x", 1, 200)),
			order("o2", "c1", 0, report.StatusEntregue, "2025-03-02 10:00:00", item("p1", "x", 1, 1000)),
			order("o3", "c1", 0, report.StatusCancelado, "2025-03-02 10:00:00", item("p3", "x", 100, 200)),
		}
		catalog := []report.Product{{ID: "p1", Name: "Café", Category: "mercearia"}}
		top := report.TopProducts(orders, catalog, mustRange("2025-03-01", "2025-03-31"), report.TopProductsOptions{Limit: 2, Location: time.UTC})

		Expect(top.Products).To(HaveLen(2))
		Expect(top.Products[0]).To(Equal(report.ProductRank{ProductID: "p1", Name: "Café", Category: "mercearia", Quantity: 2, Revenue: 2000}))
		Expect(top.Products[1].ProductID).To(Equal("p2"))
	})
})
