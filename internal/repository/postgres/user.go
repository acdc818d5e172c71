package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

const userColumns = `id, email, name, phone, photo_url, role, created_at, updated_at`

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", notFound(err))
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	users := make([]*model.User, 0)
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpsertProfile only overwrites the fields the profile carries.
func (r *userRepository) UpsertProfile(ctx context.Context, profile *model.UserProfile) (model.UpsertResult, error) {
	query := `
		INSERT INTO users (id, email, name, phone, photo_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, '', NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
		SET name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), users.phone),
			photo_url = COALESCE(NULLIF(EXCLUDED.photo_url, ''), users.photo_url),
			updated_at = NOW()
		WHERE (users.name, users.phone, users.photo_url) IS DISTINCT FROM (
			COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
			COALESCE(NULLIF(EXCLUDED.phone, ''), users.phone),
			COALESCE(NULLIF(EXCLUDED.photo_url, ''), users.photo_url))
		RETURNING (xmax = 0) AS inserted
	`
	result, err := r.upsert(ctx, query, uuid.NewString(), profile.Email, profile.Name, profile.Phone, profile.PhotoURL)
	if err != nil {
		return result, fmt.Errorf("failed to upsert user: %w", err)
	}
	return result, nil
}

func (r *userRepository) SetRole(ctx context.Context, email string, role model.Role) (model.UpsertResult, error) {
	query := `
		INSERT INTO users (id, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
		SET role = EXCLUDED.role, updated_at = NOW()
		WHERE users.role IS DISTINCT FROM EXCLUDED.role
		RETURNING (xmax = 0) AS inserted
	`
	result, err := r.upsert(ctx, query, uuid.NewString(), email, string(role))
	if err != nil {
		return result, fmt.Errorf("failed to set user role: %w", err)
	}
	return result, nil
}

// upsert runs an INSERT ... ON CONFLICT DO UPDATE ... WHERE query returning
// (xmax = 0). No row means the conflicting row already had the values.
func (r *userRepository) upsert(ctx context.Context, query string, args ...interface{}) (model.UpsertResult, error) {
	var inserted bool
	err := r.db.GetContext(ctx, &inserted, query, args...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return model.UpsertResult{MatchedCount: 1}, nil
	case err != nil:
		return model.UpsertResult{}, err
	case inserted:
		return model.UpsertResult{UpsertedCount: 1}, nil
	default:
		return model.UpsertResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
}
