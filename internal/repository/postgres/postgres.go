package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/repository"
)

// NewRepositories wires every repository to db.
func NewRepositories(db *sqlx.DB) *repository.Repositories {
	base := NewBaseRepository(db)
	return &repository.Repositories{
		Services: NewServiceRepository(base),
		Doctors:  NewDoctorRepository(base),
		Bookings: NewBookingRepository(base),
		Users:    NewUserRepository(base),
		Outbox:   NewOutboxRepository(base),
		Health:   &base,
	}
}
