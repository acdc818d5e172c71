package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write loses to existing state.
	ErrConflict = errors.New("record conflict")
)

// All repository interfaces in one file
type (
	// ServiceRepository is the catalog of treatments. List returns services
	// ordered by name with slot order preserved.
	ServiceRepository interface {
		List(ctx context.Context) ([]*model.Service, error)
		ListNames(ctx context.Context) ([]model.ServiceName, error)
		GetByName(ctx context.Context, name string) (*model.Service, error)
		Upsert(ctx context.Context, service *model.Service) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		List(ctx context.Context) ([]*model.Doctor, error)
		Delete(ctx context.Context, id string) (int64, error)
	}

	// BookingRepository enforces uniqueness of the booking natural key.
	BookingRepository interface {
		FindByNaturalKey(ctx context.Context, key model.NaturalKey) (*model.Booking, error)
		// CreateIfAbsent inserts booking unless one with the same natural key
		// exists. It returns the stored booking and whether it was inserted.
		CreateIfAbsent(ctx context.Context, booking *model.Booking) (*model.Booking, bool, error)
		Get(ctx context.Context, id string) (*model.Booking, error)
		ListByDate(ctx context.Context, date string) ([]*model.Booking, error)
		ListByEmail(ctx context.Context, email string) ([]*model.Booking, error)
		// MarkPaid sets paid and the transaction id when the booking is unpaid
		// or already paid with the same transaction id, and records payment
		// once per transaction id. A zero payment amount is taken from the
		// booking price. ErrNotFound covers a missing booking; ErrConflict a
		// booking paid under another transaction or a transaction recorded
		// for another booking. Nothing is written then.
		MarkPaid(ctx context.Context, id string, payment *model.Payment) (*model.Booking, error)
	}

	UserRepository interface {
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		List(ctx context.Context) ([]*model.User, error)
		// UpsertProfile never changes the role of an existing user.
		UpsertProfile(ctx context.Context, profile *model.UserProfile) (model.UpsertResult, error)
		SetRole(ctx context.Context, email string, role model.Role) (model.UpsertResult, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPendingEvents marks up to limit pending or retryable events as
		// processing and returns them. Claimed events are invisible to other
		// workers.
		ClaimPendingEvents(ctx context.Context, limit, maxRetries int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id string, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	HealthChecker interface {
		Ping(ctx context.Context) error
	}
)

// Repositories bundles one storage backend.
type Repositories struct {
	Services ServiceRepository
	Doctors  DoctorRepository
	Bookings BookingRepository
	Users    UserRepository
	Outbox   OutboxRepository
	Health   HealthChecker
}
