// Package catalog serves the treatment catalog and the doctor roster.
package catalog

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

const (
	keyServices     = "services"
	keyServiceNames = "service_names"
	keyDoctors      = "doctors"
)

type Service struct {
	services repository.ServiceRepository
	doctors  repository.DoctorRepository
	events   event.Emitter
	log      *logger.Logger
	// cache holds the public listings only. Nil when caching is disabled.
	cache *cache.Cache
}

// NewService caches public listings for ttl. A non-positive ttl disables
// the cache.
func NewService(services repository.ServiceRepository, doctors repository.DoctorRepository, events event.Emitter, log *logger.Logger, ttl time.Duration) *Service {
	s := &Service{
		services: services,
		doctors:  doctors,
		events:   events,
		log:      log,
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func (s *Service) ListServices(ctx context.Context) ([]*model.Service, error) {
	if cached, ok := s.cached(keyServices); ok {
		return cached.([]*model.Service), nil
	}

	services, err := s.services.List(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	s.store(keyServices, services)
	return services, nil
}

func (s *Service) ListServiceNames(ctx context.Context) ([]model.ServiceName, error) {
	if cached, ok := s.cached(keyServiceNames); ok {
		return cached.([]model.ServiceName), nil
	}

	names, err := s.services.ListNames(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	s.store(keyServiceNames, names)
	return names, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	if cached, ok := s.cached(keyDoctors); ok {
		return cached.([]*model.Doctor), nil
	}

	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	s.store(keyDoctors, doctors)
	return doctors, nil
}

func (s *Service) AddDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	doctor := &model.Doctor{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Specialty: strings.TrimSpace(req.Specialty),
		Image:     req.Image,
	}

	if err := s.doctors.Create(ctx, doctor); err != nil {
		return nil, errors.Internal(err)
	}
	s.invalidate(keyDoctors)
	return doctor, nil
}

// DeleteDoctor removes a doctor. The caller must already be authorised as an
// admin; requester is recorded on the emitted event.
func (s *Service) DeleteDoctor(ctx context.Context, requester *model.Identity, id string) (*model.DeleteResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NotFound("doctor", err)
	}

	deleted, err := s.doctors.Delete(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if deleted == 0 {
		return nil, errors.NotFound("doctor", repository.ErrNotFound)
	}
	s.invalidate(keyDoctors)

	by := ""
	if requester != nil {
		by = requester.Email
	}
	if err := s.events.Emit(ctx, model.EventDoctorDeleted, event.DoctorDeleted{DoctorID: id, DeletedBy: by}); err != nil {
		s.log.Error(err, "failed to record doctor deletion event", "doctor_id", id)
	}

	return &model.DeleteResult{DeletedCount: deleted}, nil
}

// FindService returns the catalog entry for name, bypassing the cache.
func (s *Service) FindService(ctx context.Context, name string) (*model.Service, error) {
	service, err := s.services.GetByName(ctx, name)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFound("service", err)
	}
	if err != nil {
		return nil, errors.Internal(err)
	}
	return service, nil
}

func (s *Service) cached(key string) (interface{}, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *Service) store(key string, value interface{}) {
	if s.cache != nil {
		s.cache.Set(key, value, cache.DefaultExpiration)
	}
}

func (s *Service) invalidate(key string) {
	if s.cache != nil {
		s.cache.Delete(key)
	}
}
