package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", notFound(err))
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*model.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// UpsertProfile sets only the non-empty profile fields, so a login that
// sends just the e-mail keeps the stored profile.
func (r *userRepository) UpsertProfile(ctx context.Context, profile *model.UserProfile) (model.UpsertResult, error) {
	t := now()
	set := bson.M{"updatedAt": t}
	for field, value := range map[string]string{
		"name":     profile.Name,
		"phone":    profile.Phone,
		"photoURL": profile.PhotoURL,
	} {
		if value != "" {
			set[field] = value
		}
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": newID(), "createdAt": t},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"email": profile.Email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return model.UpsertResult{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	return toUpsertResult(res), nil
}

func (r *userRepository) SetRole(ctx context.Context, email string, role model.Role) (model.UpsertResult, error) {
	t := now()
	update := bson.M{
		"$set":         bson.M{"role": string(role), "updatedAt": t},
		"$setOnInsert": bson.M{"_id": newID(), "createdAt": t},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return model.UpsertResult{}, fmt.Errorf("failed to set user role: %w", err)
	}
	return toUpsertResult(res), nil
}
