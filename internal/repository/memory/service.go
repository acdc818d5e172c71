package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type ServiceRepository struct {
	mu       sync.RWMutex
	services map[string]*model.Service
}

func NewServiceRepository(seed ...*model.Service) *ServiceRepository {
	r := &ServiceRepository{services: make(map[string]*model.Service)}
	for _, s := range seed {
		_ = r.Upsert(context.Background(), s)
	}
	return r
}

func (r *ServiceRepository) List(ctx context.Context) ([]*model.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]*model.Service, 0, len(r.services))
	for _, s := range r.services {
		services = append(services, cloneService(s))
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })
	return services, nil
}

func (r *ServiceRepository) ListNames(ctx context.Context) ([]model.ServiceName, error) {
	services, _ := r.List(ctx)
	names := make([]model.ServiceName, 0, len(services))
	for _, s := range services {
		names = append(names, model.ServiceName{Name: s.Name})
	}
	return names, nil
}

func (r *ServiceRepository) GetByName(ctx context.Context, name string) (*model.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.services[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneService(s), nil
}

func (r *ServiceRepository) Upsert(ctx context.Context, service *model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.services[service.Name]; ok {
		service.ID = existing.ID
	} else if service.ID == "" {
		service.ID = newID()
	}
	r.services[service.Name] = cloneService(service)
	return nil
}

func cloneService(s *model.Service) *model.Service {
	c := *s
	c.Slots = append([]string(nil), s.Slots...)
	return &c
}
