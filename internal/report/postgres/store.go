package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	commerceDatamodel "github.com/frahmantamala/mercado-facil/internal/core/datamodel/commerce"
	"github.com/frahmantamala/mercado-facil/internal/report"
)

// columns whitelists the filterable fields of each table.
var columns = map[string]map[string]bool{
	"orders":    {"id": true, "customer_id": true, "status": true, "ordered_at": true},
	"products":  {"id": true, "category": true, "active": true, "created_at": true},
	"customers": {"id": true, "active": true, "profile_completed": true, "registered_at": true, "last_purchase_at": true},
}

type RecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) scoped(ctx context.Context, table string, filter report.Filter) (*gorm.DB, error) {
	q := s.db.WithContext(ctx).Table(table)
	allowed := columns[table]

	for field, value := range filter.Equals {
		if !allowed[field] {
			return nil, fmt.Errorf("%w: %s.%s", report.ErrUnknownFilterField, table, field)
		}
		q = q.Where(clause.Eq{Column: clause.Column{Name: field}, Value: value})
	}
	if rg := filter.Range; rg != nil {
		if !allowed[rg.Field] {
			return nil, fmt.Errorf("%w: %s.%s", report.ErrUnknownFilterField, table, rg.Field)
		}
		col := clause.Column{Name: rg.Field}
		if !rg.From.IsZero() {
			q = q.Where(clause.Gte{Column: col, Value: rg.From})
		}
		if !rg.To.IsZero() {
			q = q.Where(clause.Lte{Column: col, Value: rg.To})
		}
	}
	return q, nil
}

func (s *RecordStore) FetchOrders(ctx context.Context, filter report.Filter) ([]report.Order, error) {
	q, err := s.scoped(ctx, "orders", filter)
	if err != nil {
		return nil, err
	}
	var rows []*commerceDatamodel.Order
	if err := q.Preload("Items").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]report.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, report.OrderFromDataModel(row))
	}
	return out, nil
}

func (s *RecordStore) FetchProducts(ctx context.Context, filter report.Filter) ([]report.Product, error) {
	q, err := s.scoped(ctx, "products", filter)
	if err != nil {
		return nil, err
	}
	var rows []*commerceDatamodel.Product
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]report.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, report.ProductFromDataModel(row))
	}
	return out, nil
}

func (s *RecordStore) FetchCustomers(ctx context.Context, filter report.Filter) ([]report.Customer, error) {
	q, err := s.scoped(ctx, "customers", filter)
	if err != nil {
		return nil, err
	}
	var rows []*commerceDatamodel.Customer
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]report.Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, report.CustomerFromDataModel(row))
	}
	return out, nil
}

// Save upserts records, used by the seeder.
func (s *RecordStore) Save(ctx context.Context, products []report.Product, customers []report.Customer, orders []report.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range products {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(report.ProductToDataModel(p)).Error; err != nil {
				return fmt.Errorf("save product %s: %w", p.ID, err)
			}
		}
		for _, c := range customers {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(report.CustomerToDataModel(c)).Error; err != nil {
				return fmt.Errorf("save customer %s: %w", c.ID, err)
			}
		}
		for _, o := range orders {
			if err := tx.Where("order_id = ?", o.ID).Delete(&commerceDatamodel.OrderItem{}).Error; err != nil {
				return fmt.Errorf("clear items of order %s: %w", o.ID, err)
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(report.OrderToDataModel(o)).Error; err != nil {
				return fmt.Errorf("save order %s: %w", o.ID, err)
			}
		}
		return nil
	})
}

var _ report.RecordStore = (*RecordStore)(nil)
