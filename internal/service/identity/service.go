// Package identity verifies and issues the bearer tokens that identify a
// caller by e-mail.
package identity

import (
	"context"
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

type Service struct {
	tokens *auth.JWT
}

func NewService(tokens *auth.JWT) *Service {
	return &Service{tokens: tokens}
}

// Verify returns the identity carried by raw. An empty token is
// unauthenticated; any other failure is forbidden.
func (s *Service) Verify(ctx context.Context, raw string) (*model.Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.Unauthorized(nil)
	}

	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, errors.Forbidden("forbidden access", err)
	}

	identity := &model.Identity{Email: claims.Email}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

func (s *Service) Issue(email string) (string, error) {
	token, _, err := s.tokens.Sign(email)
	if err != nil {
		return "", errors.Internal(err)
	}
	return token, nil
}
