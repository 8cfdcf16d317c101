package report

import "sort"

type Severity string

const (
	SeverityCritico Severity = "critico"
	SeverityBaixo   Severity = "baixo"
	SeverityAlerta  Severity = "alerta"
)

type StockOptions struct {
	Threshold     int
	CriticalRatio float64
	LowRatio      float64
}

type StockAlert struct {
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Stock     int      `json:"stock"`
	Severity  Severity `json:"severity,omitempty"`
}

type StockReport struct {
	Threshold    int          `json:"threshold"`
	OutOfStock   []StockAlert `json:"out_of_stock"`
	Low          []StockAlert `json:"low"`
	Unclassified int          `json:"unclassified"`
}

// Severity grades a low stock level against the configured bands.
func (o StockOptions) Severity(stock int) Severity {
	level := float64(stock)
	threshold := float64(o.Threshold)
	switch {
	case level <= o.CriticalRatio*threshold:
		return SeverityCritico
	case level <= o.LowRatio*threshold:
		return SeverityBaixo
	}
	return SeverityAlerta
}

// DetectLowStock splits products into out of stock (exactly zero) and low
// (strictly between zero and the threshold). Negative stock is unclassified.
func DetectLowStock(products []Product, opts StockOptions) StockReport {
	out := StockReport{Threshold: opts.Threshold, OutOfStock: []StockAlert{}, Low: []StockAlert{}}

	for _, p := range products {
		alert := StockAlert{ProductID: p.ID, Name: p.Name, Category: p.Category, Stock: p.Stock}
		switch {
		case p.Stock < 0:
			out.Unclassified++
		case p.Stock == 0:
			out.OutOfStock = append(out.OutOfStock, alert)
		case p.Stock < opts.Threshold:
			alert.Severity = opts.Severity(p.Stock)
			out.Low = append(out.Low, alert)
		}
	}

	sort.SliceStable(out.OutOfStock, func(i, j int) bool {
		return lessByName(out.OutOfStock[i], out.OutOfStock[j])
	})
	sort.SliceStable(out.Low, func(i, j int) bool {
		a, b := out.Low[i], out.Low[j]
		if a.Stock != b.Stock {
			return a.Stock < b.Stock
		}
		return lessByName(a, b)
	})
	return out
}

func lessByName(a, b StockAlert) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ProductID < b.ProductID
}
