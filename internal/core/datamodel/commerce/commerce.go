package commerce

import "time"

// Amounts are stored in centavos.

type Order struct {
	ID         string      `gorm:"primaryKey;type:varchar(64)" bson:"_id"`
	CustomerID string      `gorm:"column:customer_id;index" bson:"customer_id"`
	TotalCents int64       `gorm:"column:total_cents" bson:"total_cents"`
	Status     string      `gorm:"column:status" bson:"status"`
	OrderedAt  *time.Time  `gorm:"column:ordered_at;index" bson:"ordered_at,omitempty"`
	Items      []OrderItem `gorm:"foreignKey:OrderID" bson:"items"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" bson:"-"`
	OrderID        string `gorm:"column:order_id;type:varchar(64);index" bson:"-"`
	ProductID      string `gorm:"column:product_id" bson:"product_id"`
	Name           string `gorm:"column:name" bson:"name"`
	Category       string `gorm:"column:category" bson:"category"`
	Quantity       int    `gorm:"column:quantity" bson:"quantity"`
	UnitPriceCents int64  `gorm:"column:unit_price_cents" bson:"unit_price_cents"`
}

func (OrderItem) TableName() string { return "order_items" }

type Product struct {
	ID              string     `gorm:"primaryKey;type:varchar(64)" bson:"_id"`
	Name            string     `gorm:"column:name" bson:"name"`
	Category        string     `gorm:"column:category;index" bson:"category"`
	PriceCents      int64      `gorm:"column:price_cents" bson:"price_cents"`
	CostCents       int64      `gorm:"column:cost_cents" bson:"cost_cents"`
	Stock           int        `gorm:"column:stock" bson:"stock"`
	PromoPriceCents *int64     `gorm:"column:promo_price_cents" bson:"promo_price_cents,omitempty"`
	PromoStart      *time.Time `gorm:"column:promo_start" bson:"promo_start,omitempty"`
	PromoEnd        *time.Time `gorm:"column:promo_end" bson:"promo_end,omitempty"`
	Views           int        `gorm:"column:views" bson:"views"`
	Rating          float64    `gorm:"column:rating" bson:"rating"`
	Active          *bool      `gorm:"column:active" bson:"active,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at" bson:"created_at"`
}

func (Product) TableName() string { return "products" }

type Customer struct {
	ID               string     `gorm:"primaryKey;type:varchar(64)" bson:"_id"`
	Name             string     `gorm:"column:name" bson:"name"`
	Email            string     `gorm:"column:email" bson:"email"`
	Phone            string     `gorm:"column:phone" bson:"phone,omitempty"`
	RegisteredAt     *time.Time `gorm:"column:registered_at;index" bson:"registered_at,omitempty"`
	Active           *bool      `gorm:"column:active" bson:"active,omitempty"`
	ProfileCompleted bool       `gorm:"column:profile_completed" bson:"profile_completed"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at" bson:"last_login_at,omitempty"`
	OrderCount       int        `gorm:"column:order_count" bson:"order_count"`
	TotalSpentCents  int64      `gorm:"column:total_spent_cents" bson:"total_spent_cents"`
	LastPurchaseAt   *time.Time `gorm:"column:last_purchase_at" bson:"last_purchase_at,omitempty"`
}

func (Customer) TableName() string { return "customers" }
