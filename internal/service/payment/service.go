// Package payment links payment confirmations to bookings and creates
// payment intents through the gateway.
package payment

import (
	"context"
	stderrors "errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// Gateway creates payment intents with the payment provider.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)
}

type Service struct {
	bookings repository.BookingRepository
	gateway  Gateway
	events   event.Emitter
	metrics  *metrics.Metrics
	log      *logger.Logger
	currency string
	now      func() time.Time
}

func NewService(bookings repository.BookingRepository, gateway Gateway, events event.Emitter, m *metrics.Metrics, log *logger.Logger, currency string) *Service {
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		bookings: bookings,
		gateway:  gateway,
		events:   events,
		metrics:  m,
		log:      log,
		currency: strings.ToLower(currency),
		now:      time.Now,
	}
}

// Reconcile marks the booking paid under req.TransactionID and records the
// payment. Repeating the call with the same transaction id changes nothing.
// Without a price the booking's own price is recorded. A missing booking is
// NotFound. A booking paid under another transaction id, or a transaction id
// already recorded for another booking, is a Conflict. No payment is
// recorded in either case.
func (s *Service) Reconcile(ctx context.Context, bookingID string, req *model.ReconcileRequest) (*model.Booking, error) {
	if req == nil || strings.TrimSpace(req.TransactionID) == "" {
		return nil, errors.BadRequest("transactionId is required", nil)
	}
	if _, err := uuid.Parse(bookingID); err != nil {
		return nil, errors.NotFound("booking", err)
	}

	payment := &model.Payment{
		ID:            uuid.NewString(),
		BookingID:     bookingID,
		TransactionID: strings.TrimSpace(req.TransactionID),
		Amount:        MinorUnits(req.Price),
		Currency:      s.currency,
		CreatedAt:     s.now().UTC(),
	}

	booking, err := s.bookings.MarkPaid(ctx, bookingID, payment)
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		return nil, errors.NotFound("booking", err)
	case stderrors.Is(err, repository.ErrConflict):
		return nil, errors.Conflict("booking and transaction do not match an existing payment", err)
	case err != nil:
		return nil, errors.Internal(err)
	}

	s.metrics.PaymentsReconciled.Inc()
	if err := s.events.Emit(ctx, model.EventPaymentReconciled, event.PaymentReconciled{
		BookingID:     booking.ID,
		TransactionID: payment.TransactionID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
	}); err != nil {
		s.log.Error(err, "failed to record payment event", "booking_id", booking.ID)
	}
	return booking, nil
}

func (s *Service) CreateIntent(ctx context.Context, req *model.PaymentIntentRequest) (*model.PaymentIntent, error) {
	if req == nil || req.Price <= 0 || math.IsNaN(req.Price) || math.IsInf(req.Price, 0) {
		return nil, errors.BadRequest("price must be positive", nil)
	}

	secret, err := s.gateway.CreateIntent(ctx, MinorUnits(req.Price), s.currency)
	if err != nil {
		s.metrics.PaymentIntents.WithLabelValues("failed").Inc()
		s.log.Error(err, "payment intent creation failed")
		return nil, errors.Upstream("payment gateway", err)
	}

	s.metrics.PaymentIntents.WithLabelValues("created").Inc()
	return &model.PaymentIntent{ClientSecret: secret}, nil
}

// MinorUnits converts a price to the smallest currency unit, rounding to the
// nearest cent.
func MinorUnits(price float64) int64 {
	return model.MinorUnits(price)
}
