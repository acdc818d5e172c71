// Package memory keeps every repository in process memory. It backs the
// "memory" database driver and the service tests; a single mutex per
// repository stands in for the unique indexes of the real stores.
package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/repository"
)

// NewRepositories returns an empty in-memory backend.
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Services: NewServiceRepository(),
		Doctors:  NewDoctorRepository(),
		Bookings: NewBookingRepository(),
		Users:    NewUserRepository(),
		Outbox:   NewOutboxRepository(),
		Health:   healthChecker{},
	}
}

type healthChecker struct{}

func (healthChecker) Ping(context.Context) error { return nil }

func newID() string {
	return uuid.NewString()
}
