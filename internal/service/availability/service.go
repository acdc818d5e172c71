// Package availability derives the open slots of each service for a date.
// Results are computed from the stores on every call and never cached.
package availability

import (
	"context"
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

type Service struct {
	services repository.ServiceRepository
	bookings repository.BookingRepository
}

func NewService(services repository.ServiceRepository, bookings repository.BookingRepository) *Service {
	return &Service{
		services: services,
		bookings: bookings,
	}
}

// AvailableSlots returns every service with the slots still open on date.
// The caller may only ask in their own name.
func (s *Service) AvailableSlots(ctx context.Context, identity *model.Identity, email, date string) ([]model.ServiceAvailability, error) {
	if identity == nil {
		return nil, errors.Unauthorized(nil)
	}
	if identity.Email != email {
		return nil, errors.Forbidden("forbidden access", nil)
	}
	if strings.TrimSpace(date) == "" {
		return nil, errors.BadRequest("date is required", nil)
	}

	services, err := s.services.List(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	booked, err := s.bookings.ListByDate(ctx, date)
	if err != nil {
		return nil, errors.Internal(err)
	}

	return Compute(services, booked), nil
}

// Compute subtracts the booked slots from each service's slots. Slot order
// follows the catalog and labels are compared exactly. Every service appears
// in the result, with an empty slice when it is fully booked.
func Compute(services []*model.Service, bookings []*model.Booking) []model.ServiceAvailability {
	taken := make(map[string]map[string]struct{})
	for _, b := range bookings {
		slots, ok := taken[b.TreatmentName]
		if !ok {
			slots = make(map[string]struct{})
			taken[b.TreatmentName] = slots
		}
		slots[b.Slot] = struct{}{}
	}

	result := make([]model.ServiceAvailability, 0, len(services))
	for _, service := range services {
		open := make([]string, 0, len(service.Slots))
		for _, slot := range service.Slots {
			if _, booked := taken[service.Name][slot]; !booked {
				open = append(open, slot)
			}
		}
		result = append(result, model.ServiceAvailability{
			ID:    service.ID,
			Name:  service.Name,
			Slots: open,
			Price: service.Price,
		})
	}
	return result
}
