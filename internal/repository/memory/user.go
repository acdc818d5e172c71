package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*model.User)}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		c := *u
		users = append(users, &c)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// UpsertProfile leaves fields the profile does not carry untouched.
func (r *UserRepository) UpsertProfile(ctx context.Context, profile *model.UserProfile) (model.UpsertResult, error) {
	return r.upsert(profile.Email, func(u *model.User) bool {
		changed := false
		for _, f := range []struct {
			dst *string
			src string
		}{
			{&u.Name, profile.Name},
			{&u.Phone, profile.Phone},
			{&u.PhotoURL, profile.PhotoURL},
		} {
			if f.src != "" && *f.dst != f.src {
				*f.dst = f.src
				changed = true
			}
		}
		return changed
	}), nil
}

func (r *UserRepository) SetRole(ctx context.Context, email string, role model.Role) (model.UpsertResult, error) {
	return r.upsert(email, func(u *model.User) bool {
		changed := u.Role != role
		u.Role = role
		return changed
	}), nil
}

func (r *UserRepository) upsert(email string, apply func(*model.User) bool) model.UpsertResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	u, ok := r.users[email]
	if !ok {
		u = &model.User{ID: newID(), Email: email}
		apply(u)
		u.Touch(now)
		r.users[email] = u
		return model.UpsertResult{UpsertedCount: 1}
	}

	result := model.UpsertResult{MatchedCount: 1}
	if apply(u) {
		u.UpdatedAt = now
		result.ModifiedCount = 1
	}
	return result
}
