package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/frahmantamala/mercado-facil/internal/adminuser"
	adminuserDatamodel "github.com/frahmantamala/mercado-facil/internal/core/datamodel/adminuser"
)

const CollectionName = "admin_users"

type AdminUserRepository struct {
	collection *mongo.Collection
}

func NewAdminUserRepository(db *mongo.Database) *AdminUserRepository {
	return &AdminUserRepository{collection: db.Collection(CollectionName)}
}

// EnsureIndexes creates the unique email index.
func (r *AdminUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	return err
}

func (r *AdminUserRepository) findOne(ctx context.Context, filter bson.M) (*adminuserDatamodel.AdminUser, error) {
	var row adminuserDatamodel.AdminUser
	err := r.collection.FindOne(ctx, filter).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (*adminuserDatamodel.AdminUser, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AdminUserRepository) GetByID(ctx context.Context, id string) (*adminuserDatamodel.AdminUser, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AdminUserRepository) List(ctx context.Context, filter adminuser.ListFilter) ([]*adminuserDatamodel.AdminUser, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.Active != nil {
		query["is_active"] = *filter.Active
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []*adminuserDatamodel.AdminUser{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AdminUserRepository) Create(ctx context.Context, user *adminuserDatamodel.AdminUser) error {
	_, err := r.collection.InsertOne(ctx, user)
	return insertError(err)
}

// insertError maps a unique email violation onto ErrEmailTaken.
func insertError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return adminuser.ErrEmailTaken
	}
	return err
}

func (r *AdminUserRepository) Update(ctx context.Context, user *adminuserDatamodel.AdminUser) error {
	res, err := r.collection.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"name":        user.Name,
		"phone":       user.Phone,
		"role":        user.Role,
		"permissions": user.Permissions,
		"is_active":   user.IsActive,
		"updated_at":  user.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return adminuser.ErrNotFound
	}
	return nil
}

func (r *AdminUserRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"is_active":  false,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return adminuser.ErrNotFound
	}
	return nil
}

func (r *AdminUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_login_at": at}})
	return err
}

var _ adminuser.RepositoryAPI = (*AdminUserRepository)(nil)
