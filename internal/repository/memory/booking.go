package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type BookingRepository struct {
	mu       sync.RWMutex
	bookings []*model.Booking
	byKey    map[model.NaturalKey]*model.Booking
	payments map[string]*model.Payment
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		byKey:    make(map[model.NaturalKey]*model.Booking),
		payments: make(map[string]*model.Payment),
	}
}

func (r *BookingRepository) FindByNaturalKey(ctx context.Context, key model.NaturalKey) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byKey[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) CreateIfAbsent(ctx context.Context, booking *model.Booking) (*model.Booking, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byKey[booking.Key()]; ok {
		return cloneBooking(existing), false, nil
	}

	stored := cloneBooking(booking)
	if stored.ID == "" {
		stored.ID = newID()
	}
	stored.Touch(time.Now())
	r.bookings = append(r.bookings, stored)
	r.byKey[stored.Key()] = stored
	return cloneBooking(stored), true, nil
}

func (r *BookingRepository) Get(ctx context.Context, id string) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.ID == id {
			return cloneBooking(b), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *BookingRepository) ListByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.Date == date }), nil
}

func (r *BookingRepository) ListByEmail(ctx context.Context, email string) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.Email == email }), nil
}

func (r *BookingRepository) MarkPaid(ctx context.Context, id string, payment *model.Payment) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var target *model.Booking
	for _, b := range r.bookings {
		if b.ID == id {
			target = b
			break
		}
	}
	if target == nil {
		return nil, repository.ErrNotFound
	}
	if target.Paid && (target.TransactionID == nil || *target.TransactionID != payment.TransactionID) {
		return nil, repository.ErrConflict
	}
	tx := payment.TransactionID
	if existing, ok := r.payments[tx]; ok && existing.BookingID != id {
		return nil, repository.ErrConflict
	}
	if payment.Amount == 0 {
		payment.Amount = model.MinorUnits(target.Price)
	}

	target.Paid = true
	target.TransactionID = &tx
	target.UpdatedAt = time.Now()

	if _, ok := r.payments[tx]; !ok {
		p := *payment
		if p.ID == "" {
			p.ID = newID()
		}
		p.BookingID = id
		payment.BookingID = id
		r.payments[tx] = &p
	}
	return cloneBooking(target), nil
}

// Payments returns the recorded payments. Test helper.
func (r *BookingRepository) Payments() []*model.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payments := make([]*model.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		c := *p
		payments = append(payments, &c)
	}
	return payments
}

func (r *BookingRepository) filter(match func(*model.Booking) bool) []*model.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookings := make([]*model.Booking, 0)
	for _, b := range r.bookings {
		if match(b) {
			bookings = append(bookings, cloneBooking(b))
		}
	}
	return bookings
}

func cloneBooking(b *model.Booking) *model.Booking {
	c := *b
	if b.TransactionID != nil {
		tx := *b.TransactionID
		c.TransactionID = &tx
	}
	return &c
}
