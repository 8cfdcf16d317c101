package report

import (
	"time"

	commerceDatamodel "github.com/frahmantamala/mercado-facil/internal/core/datamodel/commerce"
)

func OrderFromDataModel(m *commerceDatamodel.Order) Order {
	o := Order{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Items:      make([]OrderItem, 0, len(m.Items)),
		Total:      Money(m.TotalCents),
		Status:     OrderStatus(m.Status),
	}
	if m.OrderedAt != nil {
		o.OrderedAt = *m.OrderedAt
	}
	for _, it := range m.Items {
		o.Items = append(o.Items, OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Category:  it.Category,
			Quantity:  it.Quantity,
			UnitPrice: Money(it.UnitPriceCents),
		})
	}
	return o
}

func OrderToDataModel(o Order) *commerceDatamodel.Order {
	m := &commerceDatamodel.Order{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		TotalCents: int64(o.Total),
		Status:     string(o.Status),
		Items:      make([]commerceDatamodel.OrderItem, 0, len(o.Items)),
	}
	if !o.OrderedAt.IsZero() {
		t := o.OrderedAt
		m.OrderedAt = &t
	}
	for _, it := range o.Items {
		m.Items = append(m.Items, commerceDatamodel.OrderItem{
			OrderID:        o.ID,
			ProductID:      it.ProductID,
			Name:           it.Name,
			Category:       it.Category,
			Quantity:       it.Quantity,
			UnitPriceCents: int64(it.UnitPrice),
		})
	}
	return m
}

func ProductFromDataModel(m *commerceDatamodel.Product) Product {
	p := Product{
		ID:         m.ID,
		Name:       m.Name,
		Category:   m.Category,
		Price:      Money(m.PriceCents),
		Cost:       Money(m.CostCents),
		Stock:      m.Stock,
		PromoStart: m.PromoStart,
		PromoEnd:   m.PromoEnd,
		Views:      m.Views,
		Rating:     m.Rating,
		Active:     m.Active,
	}
	if m.PromoPriceCents != nil {
		promo := Money(*m.PromoPriceCents)
		p.PromoPrice = &promo
	}
	return p
}

func ProductToDataModel(p Product) *commerceDatamodel.Product {
	m := &commerceDatamodel.Product{
		ID:         p.ID,
		Name:       p.Name,
		Category:   p.Category,
		PriceCents: int64(p.Price),
		CostCents:  int64(p.Cost),
		Stock:      p.Stock,
		PromoStart: p.PromoStart,
		PromoEnd:   p.PromoEnd,
		Views:      p.Views,
		Rating:     p.Rating,
		Active:     p.Active,
		CreatedAt:  time.Now(),
	}
	if p.PromoPrice != nil {
		promo := int64(*p.PromoPrice)
		m.PromoPriceCents = &promo
	}
	return m
}

func CustomerFromDataModel(m *commerceDatamodel.Customer) Customer {
	c := Customer{
		ID:               m.ID,
		Name:             m.Name,
		Email:            m.Email,
		Phone:            m.Phone,
		Active:           m.Active,
		ProfileCompleted: m.ProfileCompleted,
		LastLoginAt:      m.LastLoginAt,
		OrderCount:       m.OrderCount,
		TotalSpent:       Money(m.TotalSpentCents),
		LastPurchaseAt:   m.LastPurchaseAt,
	}
	if m.RegisteredAt != nil {
		c.RegisteredAt = *m.RegisteredAt
	}
	return c
}

func CustomerToDataModel(c Customer) *commerceDatamodel.Customer {
	m := &commerceDatamodel.Customer{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		Phone:            c.Phone,
		Active:           c.Active,
		ProfileCompleted: c.ProfileCompleted,
		LastLoginAt:      c.LastLoginAt,
		OrderCount:       c.OrderCount,
		TotalSpentCents:  int64(c.TotalSpent),
		LastPurchaseAt:   c.LastPurchaseAt,
	}
	if !c.RegisteredAt.IsZero() {
		t := c.RegisteredAt
		m.RegisteredAt = &t
	}
	return m
}
