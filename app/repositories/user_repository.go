package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/karigar/app/models"
	"github.com/shashiranjanraj/karigar/pkg/metrics"
)

// UserRepository is the user directory: records keyed by email.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(col *mongo.Collection) *UserRepository {
	return &UserRepository{col: col}
}

// EnsureIndexes creates the unique email index. Called once at startup.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users: ensure indexes: %w", err)
	}
	return nil
}

// Upsert creates the directory record for email on first sight and refreshes
// the display name on later calls. created reports whether a new record was
// inserted. The role is only ever set on insert; an existing admin keeps
// their role across logins.
func (r *UserRepository) Upsert(ctx context.Context, email, name string) (models.User, bool, error) {
	defer metrics.ObserveStoreOp(ColUsers, "upsert", time.Now())

	now := time.Now().UTC()
	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$set": bson.M{"name": name, "updated_at": now},
			"$setOnInsert": bson.M{
				"email":      email,
				"role":       models.RoleUser,
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return models.User{}, false, fmt.Errorf("users: upsert %q: %w", email, err)
	}

	user, err := r.FindByEmail(ctx, email)
	if err != nil {
		return models.User{}, false, err
	}

	return user, res.UpsertedCount > 0, nil
}

// FindByEmail returns the directory record for email or ErrNotFound.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveStoreOp(ColUsers, "find", time.Now())

	var user models.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

// Promote grants the admin role to email and returns the updated record.
func (r *UserRepository) Promote(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveStoreOp(ColUsers, "update", time.Now())

	var user models.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"role": models.RoleAdmin, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}
