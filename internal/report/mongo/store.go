package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	commerceDatamodel "github.com/frahmantamala/mercado-facil/internal/core/datamodel/commerce"
	"github.com/frahmantamala/mercado-facil/internal/report"
)

const (
	OrdersCollection    = "orders"
	ProductsCollection  = "products"
	CustomersCollection = "customers"
)

// fields whitelists the filterable fields of each collection. "id" maps to _id.
var fields = map[string]map[string]string{
	OrdersCollection:    {"id": "_id", "customer_id": "customer_id", "status": "status", "ordered_at": "ordered_at"},
	ProductsCollection:  {"id": "_id", "category": "category", "active": "active", "created_at": "created_at"},
	CustomersCollection: {"id": "_id", "active": "active", "profile_completed": "profile_completed", "registered_at": "registered_at", "last_purchase_at": "last_purchase_at"},
}

type RecordStore struct {
	db *mongo.Database
}

func NewRecordStore(db *mongo.Database) *RecordStore {
	return &RecordStore{db: db}
}

// BuildFilter translates a report filter into a bson query.
func BuildFilter(collection string, filter report.Filter) (bson.M, error) {
	allowed := fields[collection]
	query := bson.M{}

	for field, value := range filter.Equals {
		name, ok := allowed[field]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", report.ErrUnknownFilterField, collection, field)
		}
		query[name] = value
	}
	if rg := filter.Range; rg != nil {
		name, ok := allowed[rg.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", report.ErrUnknownFilterField, collection, rg.Field)
		}
		bounds := bson.M{}
		if !rg.From.IsZero() {
			bounds["$gte"] = rg.From
		}
		if !rg.To.IsZero() {
			bounds["$lte"] = rg.To
		}
		if len(bounds) > 0 {
			query[name] = bounds
		}
	}
	return query, nil
}

func find[T any](ctx context.Context, db *mongo.Database, collection string, filter report.Filter) ([]*T, error) {
	query, err := BuildFilter(collection, filter)
	if err != nil {
		return nil, err
	}
	cursor, err := db.Collection(collection).Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []*T{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *RecordStore) FetchOrders(ctx context.Context, filter report.Filter) ([]report.Order, error) {
	rows, err := find[commerceDatamodel.Order](ctx, s.db, OrdersCollection, filter)
	if err != nil {
		return nil, err
	}
	out := make([]report.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, report.OrderFromDataModel(row))
	}
	return out, nil
}

func (s *RecordStore) FetchProducts(ctx context.Context, filter report.Filter) ([]report.Product, error) {
	rows, err := find[commerceDatamodel.Product](ctx, s.db, ProductsCollection, filter)
	if err != nil {
		return nil, err
	}
	out := make([]report.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, report.ProductFromDataModel(row))
	}
	return out, nil
}

func (s *RecordStore) FetchCustomers(ctx context.Context, filter report.Filter) ([]report.Customer, error) {
	rows, err := find[commerceDatamodel.Customer](ctx, s.db, CustomersCollection, filter)
	if err != nil {
		return nil, err
	}
	out := make([]report.Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, report.CustomerFromDataModel(row))
	}
	return out, nil
}

func upsert(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

// Save upserts records, used by the seeder.
func (s *RecordStore) Save(ctx context.Context, products []report.Product, customers []report.Customer, orders []report.Order) error {
	for _, p := range products {
		if err := upsert(ctx, s.db.Collection(ProductsCollection), p.ID, report.ProductToDataModel(p)); err != nil {
			return fmt.Errorf("save product %s: %w", p.ID, err)
		}
	}
	for _, c := range customers {
		if err := upsert(ctx, s.db.Collection(CustomersCollection), c.ID, report.CustomerToDataModel(c)); err != nil {
			return fmt.Errorf("save customer %s: %w", c.ID, err)
		}
	}
	for _, o := range orders {
		if err := upsert(ctx, s.db.Collection(OrdersCollection), o.ID, report.OrderToDataModel(o)); err != nil {
			return fmt.Errorf("save order %s: %w", o.ID, err)
		}
	}
	return nil
}

var _ report.RecordStore = (*RecordStore)(nil)
