package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

const bookingColumns = `id, patient_name, treatment_name, treatment_id, email, phone,
	date, slot, price, paid, transaction_id, created_at, updated_at`

type bookingRepository struct {
	BaseRepository
}

func NewBookingRepository(base BaseRepository) repository.BookingRepository {
	return &bookingRepository{base}
}

func (r *bookingRepository) FindByNaturalKey(ctx context.Context, key model.NaturalKey) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE patient_name = $1 AND treatment_name = $2 AND email = $3
	`
	var booking model.Booking
	if err := r.db.GetContext(ctx, &booking, query, key.PatientName, key.TreatmentName, key.Email); err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", notFound(err))
	}
	return &booking, nil
}

// CreateIfAbsent relies on the unique index over the natural key: the insert
// is a no-op for the loser of a race, which then reads the winner's row.
func (r *bookingRepository) CreateIfAbsent(ctx context.Context, booking *model.Booking) (*model.Booking, bool, error) {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, NULL, $10, $10)
		ON CONFLICT (patient_name, treatment_name, email) DO NOTHING
		RETURNING ` + bookingColumns

	id := booking.ID
	if id == "" {
		id = uuid.NewString()
	}

	var stored model.Booking
	err := r.db.GetContext(ctx, &stored, query,
		id,
		booking.PatientName,
		booking.TreatmentName,
		booking.TreatmentID,
		booking.Email,
		booking.Phone,
		booking.Date,
		booking.Slot,
		booking.Price,
		time.Now(),
	)
	if err == nil {
		return &stored, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create booking: %w", err)
	}

	existing, err := r.FindByNaturalKey(ctx, booking.Key())
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *bookingRepository) Get(ctx context.Context, id string) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking model.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", notFound(err))
	}
	return &booking, nil
}

func (r *bookingRepository) ListByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE date = $1 ORDER BY created_at`

	bookings := make([]*model.Booking, 0)
	if err := r.db.SelectContext(ctx, &bookings, query, date); err != nil {
		return nil, fmt.Errorf("failed to list bookings by date: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListByEmail(ctx context.Context, email string) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE email = $1 ORDER BY created_at`

	bookings := make([]*model.Booking, 0)
	if err := r.db.SelectContext(ctx, &bookings, query, email); err != nil {
		return nil, fmt.Errorf("failed to list bookings by email: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) MarkPaid(ctx context.Context, id string, payment *model.Payment) (*model.Booking, error) {
	updateQuery := `
		UPDATE bookings
		SET paid = TRUE, transaction_id = $2, updated_at = NOW()
		WHERE id = $1 AND (paid = FALSE OR transaction_id = $2)
		RETURNING ` + bookingColumns

	paymentQuery := `
		INSERT INTO payments (id, booking_id, transaction_id, amount, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (transaction_id) DO NOTHING
	`

	ownerQuery := `SELECT booking_id FROM payments WHERE transaction_id = $1`

	var booking model.Booking
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &booking, updateQuery, id, payment.TransactionID)
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)`, id); err != nil {
				return fmt.Errorf("failed to check booking: %w", err)
			}
			if !exists {
				return repository.ErrNotFound
			}
			return repository.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("failed to mark booking paid: %w", err)
		}

		if payment.ID == "" {
			payment.ID = uuid.NewString()
		}
		if payment.CreatedAt.IsZero() {
			payment.CreatedAt = time.Now()
		}
		if payment.Amount == 0 {
			payment.Amount = model.MinorUnits(booking.Price)
		}
		payment.BookingID = id
		if _, err := tx.ExecContext(ctx, paymentQuery,
			payment.ID,
			id,
			payment.TransactionID,
			payment.Amount,
			payment.Currency,
			payment.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		// The transaction id may already belong to another booking; rolling
		// back leaves this booking unpaid.
		var owner string
		if err := tx.GetContext(ctx, &owner, ownerQuery, payment.TransactionID); err != nil {
			return fmt.Errorf("failed to check payment: %w", err)
		}
		if owner != id {
			return repository.ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
