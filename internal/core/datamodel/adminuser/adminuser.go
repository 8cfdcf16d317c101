package adminuser

import "time"

// PermissionEntry is the stored form of one permission; names are kept as
// plain strings so storage never depends on enum ordinals.
type PermissionEntry struct {
	Resource string   `json:"resource" bson:"resource"`
	Actions  []string `json:"actions" bson:"actions"`
}

type AdminUser struct {
	ID          string            `gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name        string            `gorm:"column:name;not null" bson:"name"`
	Email       string            `gorm:"column:email;uniqueIndex;not null" bson:"email"`
	Phone       string            `gorm:"column:phone" bson:"phone,omitempty"`
	Role        string            `gorm:"column:role;not null" bson:"role"`
	Permissions []PermissionEntry `gorm:"column:permissions;serializer:json;type:text" bson:"permissions"`
	IsActive    bool              `gorm:"column:is_active;not null" bson:"is_active"`
	CreatedAt   time.Time         `gorm:"column:created_at" bson:"created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at" bson:"updated_at"`
	LastLoginAt *time.Time        `gorm:"column:last_login_at" bson:"last_login_at,omitempty"`
	CreatedBy   *string           `gorm:"column:created_by;type:varchar(36)" bson:"created_by,omitempty"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
