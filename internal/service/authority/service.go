// Package authority decides admin privilege from persisted user records.
package authority

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

type Service struct {
	users  repository.UserRepository
	events event.Emitter
	log    *logger.Logger
}

func NewService(users repository.UserRepository, events event.Emitter, log *logger.Logger) *Service {
	return &Service{
		users:  users,
		events: events,
		log:    log,
	}
}

// IsAdmin reports whether email belongs to a stored user whose role is
// exactly Admin. An unknown user is not an admin. Store failures are
// returned as errors and never grant access.
func (s *Service) IsAdmin(ctx context.Context, email string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if stderrors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Internal(err)
	}
	return user.Role.IsAdmin(), nil
}

func (s *Service) RequireAdmin(ctx context.Context, identity *model.Identity) error {
	if identity == nil {
		return errors.Unauthorized(nil)
	}

	ok, err := s.IsAdmin(ctx, identity.Email)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Forbidden("forbidden access", nil)
	}
	return nil
}

// SetAdmin promotes targetEmail after checking that requester is an admin.
// The target record is created when absent.
func (s *Service) SetAdmin(ctx context.Context, requester *model.Identity, targetEmail string) (model.UpsertResult, error) {
	if err := s.RequireAdmin(ctx, requester); err != nil {
		return model.UpsertResult{}, err
	}

	targetEmail = strings.TrimSpace(targetEmail)
	if targetEmail == "" {
		return model.UpsertResult{}, errors.BadRequest("email is required", nil)
	}

	result, err := s.users.SetRole(ctx, targetEmail, model.RoleAdmin)
	if err != nil {
		return model.UpsertResult{}, errors.Internal(err)
	}

	if err := s.events.Emit(ctx, model.EventUserPromoted, event.UserPromoted{
		Email:       targetEmail,
		PromotedBy:  requester.Email,
		WasInserted: result.Inserted(),
	}); err != nil {
		s.log.Error(err, "failed to record promotion event", "email", targetEmail)
	}

	s.log.Info("user promoted to admin", "email", targetEmail, "by", requester.Email)
	return result, nil
}
