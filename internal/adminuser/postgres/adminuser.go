package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/mercado-facil/internal/adminuser"
	adminuserDatamodel "github.com/frahmantamala/mercado-facil/internal/core/datamodel/adminuser"
)

type AdminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) adminuser.RepositoryAPI {
	return &AdminUserRepository{db: db}
}

func (r *AdminUserRepository) first(ctx context.Context, query string, arg any) (*adminuserDatamodel.AdminUser, error) {
	var row adminuserDatamodel.AdminUser
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (*adminuserDatamodel.AdminUser, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *AdminUserRepository) GetByID(ctx context.Context, id string) (*adminuserDatamodel.AdminUser, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *AdminUserRepository) List(ctx context.Context, filter adminuser.ListFilter) ([]*adminuserDatamodel.AdminUser, error) {
	q := r.db.WithContext(ctx).Model(&adminuserDatamodel.AdminUser{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	rows := []*adminuserDatamodel.AdminUser{}
	err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *AdminUserRepository) Create(ctx context.Context, user *adminuserDatamodel.AdminUser) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return adminuser.ErrEmailTaken
	}
	return err
}

// Update saves every column except email and created_* which never change
// after creation.
func (r *AdminUserRepository) Update(ctx context.Context, user *adminuserDatamodel.AdminUser) error {
	res := r.db.WithContext(ctx).
		Model(&adminuserDatamodel.AdminUser{ID: user.ID}).
		Select("name", "phone", "role", "permissions", "is_active", "updated_at").
		Updates(user)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return adminuser.ErrNotFound
	}
	return nil
}

func (r *AdminUserRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&adminuserDatamodel.AdminUser{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return adminuser.ErrNotFound
	}
	return nil
}

func (r *AdminUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&adminuserDatamodel.AdminUser{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}
