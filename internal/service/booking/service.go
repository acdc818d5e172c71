// Package booking owns appointment creation. A booking is identified by its
// natural key (patient name, treatment name, e-mail); submitting the same key
// again returns the stored booking instead of creating another one.
package booking

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	"github.com/jwalitptl/clinic-api/internal/service/notification"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

const defaultNotifyTimeout = 10 * time.Second

// Result is the outcome of Create. AlreadyExists is set when the natural key
// was taken, in which case Booking is the stored record.
type Result struct {
	Booking       *model.Booking
	AlreadyExists bool
}

type Service struct {
	services      repository.ServiceRepository
	bookings      repository.BookingRepository
	notifier      notification.Notifier
	events        event.Emitter
	metrics       *metrics.Metrics
	log           *logger.Logger
	notifyTimeout time.Duration
	now           func() time.Time

	pending sync.WaitGroup
}

func NewService(
	services repository.ServiceRepository,
	bookings repository.BookingRepository,
	notifier notification.Notifier,
	events event.Emitter,
	m *metrics.Metrics,
	log *logger.Logger,
	notifyTimeout time.Duration,
) *Service {
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	return &Service{
		services:      services,
		bookings:      bookings,
		notifier:      notifier,
		events:        events,
		metrics:       m,
		log:           log,
		notifyTimeout: notifyTimeout,
		now:           time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateBookingRequest) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	candidate := req.ToBooking(s.now().UTC())

	existing, err := s.bookings.FindByNaturalKey(ctx, candidate.Key())
	switch {
	case err == nil:
		s.metrics.BookingDuplicates.Inc()
		return &Result{Booking: existing, AlreadyExists: true}, nil
	case !stderrors.Is(err, repository.ErrNotFound):
		return nil, errors.Internal(err)
	}

	service, err := s.services.GetByName(ctx, candidate.TreatmentName)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.BadRequest("unknown treatment", err)
	}
	if err != nil {
		return nil, errors.Internal(err)
	}
	if !service.HasSlot(candidate.Slot) {
		return nil, errors.BadRequest("slot is not offered for this treatment", nil)
	}

	candidate.TreatmentID = service.ID
	if candidate.Price == 0 {
		candidate.Price = service.Price
	}
	candidate.Paid = false
	candidate.TransactionID = nil

	// The store's unique key decides concurrent races; the loser gets the
	// winner's record back.
	stored, created, err := s.bookings.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if !created {
		s.metrics.BookingDuplicates.Inc()
		return &Result{Booking: stored, AlreadyExists: true}, nil
	}

	s.metrics.BookingsCreated.Inc()
	s.log.Info("booking created", "booking_id", stored.ID, "treatment", stored.TreatmentName, "date", stored.Date)

	if err := s.events.Emit(ctx, model.EventBookingCreated, event.BookingCreated{
		BookingID:     stored.ID,
		TreatmentName: stored.TreatmentName,
		Email:         stored.Email,
		Date:          stored.Date,
		Slot:          stored.Slot,
	}); err != nil {
		s.log.Error(err, "failed to record booking event", "booking_id", stored.ID)
	}

	s.notify(ctx, stored)
	return &Result{Booking: stored}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NotFound("booking", err)
	}

	booking, err := s.bookings.Get(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFound("booking", err)
	}
	if err != nil {
		return nil, errors.Internal(err)
	}
	return booking, nil
}

// ListForOwner returns the bookings made under email. Callers may only list
// their own.
func (s *Service) ListForOwner(ctx context.Context, identity *model.Identity, email string) ([]*model.Booking, error) {
	if identity == nil {
		return nil, errors.Unauthorized(nil)
	}
	if identity.Email != email {
		return nil, errors.Forbidden("forbidden access", nil)
	}

	bookings, err := s.bookings.ListByEmail(ctx, email)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return bookings, nil
}

// Wait blocks until in-flight confirmations finish.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) notify(ctx context.Context, booking *model.Booking) {
	if s.notifier == nil {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
		defer cancel()

		if err := s.notifier.BookingConfirmed(ctx, booking); err != nil {
			s.metrics.NotificationFailures.Inc()
			s.log.Error(err, "booking confirmation failed", "booking_id", booking.ID)
			return
		}
		s.metrics.NotificationsSent.Inc()
	}()
}

func validate(req *model.CreateBookingRequest) error {
	if req == nil {
		return errors.BadRequest("request body is required", nil)
	}

	missing := make([]string, 0)
	for name, value := range map[string]string{
		"patientName":   req.PatientName,
		"treatmentName": req.TreatmentName,
		"email":         req.Email,
		"date":          req.Date,
		"slot":          req.Slot,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.BadRequest("missing required fields", stderrors.New(strings.Join(missing, ", ")))
	}
	return nil
}
