// Package user manages user profiles and hands out access tokens.
package user

import (
	"context"
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

// TokenIssuer signs access tokens for an e-mail.
type TokenIssuer interface {
	Issue(email string) (string, error)
}

type Service struct {
	repo   repository.UserRepository
	tokens TokenIssuer
	log    *logger.Logger
}

func NewService(repo repository.UserRepository, tokens TokenIssuer, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		log:    log,
	}
}

// Login upserts the caller's profile and returns a fresh access token. The
// stored role is left untouched.
func (s *Service) Login(ctx context.Context, profile *model.UserProfile) (*model.TokenResponse, error) {
	if profile == nil || strings.TrimSpace(profile.Email) == "" {
		return nil, errors.BadRequest("email is required", nil)
	}
	profile.Email = strings.TrimSpace(profile.Email)

	result, err := s.repo.UpsertProfile(ctx, profile)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if result.Inserted() {
		s.log.Info("user registered", "email", profile.Email)
	}

	token, err := s.tokens.Issue(profile.Email)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{AccessToken: token}, nil
}

func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return users, nil
}
