package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

var bookingCols = []string{
	"id", "patient_name", "treatment_name", "treatment_id", "email", "phone",
	"date", "slot", "price", "paid", "transaction_id", "created_at", "updated_at",
}

func newMock(t *testing.T) (BaseRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBaseRepository(sqlx.NewDb(db, "postgres")), mock
}

func bookingRow(id string, paid bool, tx interface{}) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingCols).AddRow(
		id, "Ann", "Cleaning", "", "ann@example.com", "",
		"May 1, 2022", "8:00 AM", 50.0, paid, tx, now, now,
	)
}

func sampleBooking() *model.Booking {
	return &model.Booking{
		PatientName:   "Ann",
		TreatmentName: "Cleaning",
		Email:         "ann@example.com",
		Date:          "May 1, 2022",
		Slot:          "8:00 AM",
		Price:         50,
	}
}

func TestBookingRepository_CreateIfAbsent(t *testing.T) {
	t.Run("inserts new booking", func(t *testing.T) {
		base, mock := newMock(t)
		repo := NewBookingRepository(base)

		mock.ExpectQuery("INSERT INTO bookings").WillReturnRows(bookingRow("b-1", false, nil))

		stored, created, err := repo.CreateIfAbsent(context.Background(), sampleBooking())
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "b-1", stored.ID)
		assert.Equal(t, "Cleaning", stored.TreatmentName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict returns existing booking", func(t *testing.T) {
		base, mock := newMock(t)
		repo := NewBookingRepository(base)

		mock.ExpectQuery("INSERT INTO bookings").WillReturnRows(sqlmock.NewRows(bookingCols))
		mock.ExpectQuery("FROM bookings").
			WithArgs("Ann", "Cleaning", "ann@example.com").
			WillReturnRows(bookingRow("winner", false, nil))

		stored, created, err := repo.CreateIfAbsent(context.Background(), sampleBooking())
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "winner", stored.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_FindByNaturalKeyNotFound(t *testing.T) {
	base, mock := newMock(t)
	repo := NewBookingRepository(base)

	mock.ExpectQuery("FROM bookings").WillReturnRows(sqlmock.NewRows(bookingCols))

	_, err := repo.FindByNaturalKey(context.Background(), sampleBooking().Key())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBookingRepository_MarkPaid(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "marks unpaid booking and records payment",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("UPDATE bookings").
					WithArgs("b-1", "pi_1").
					WillReturnRows(bookingRow("b-1", true, "pi_1"))
				mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery("SELECT booking_id FROM payments").
					WithArgs("pi_1").
					WillReturnRows(sqlmock.NewRows([]string{"booking_id"}).AddRow("b-1"))
				mock.ExpectCommit()
			},
		},
		{
			name: "transaction recorded for another booking",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("UPDATE bookings").
					WithArgs("b-1", "pi_1").
					WillReturnRows(bookingRow("b-1", true, "pi_1"))
				mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT booking_id FROM payments").
					WithArgs("pi_1").
					WillReturnRows(sqlmock.NewRows([]string{"booking_id"}).AddRow("b-0"))
				mock.ExpectRollback()
			},
			wantErr: repository.ErrConflict,
		},
		{
			name: "missing booking writes nothing",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("UPDATE bookings").WillReturnRows(sqlmock.NewRows(bookingCols))
				mock.ExpectQuery("SELECT EXISTS").
					WithArgs("b-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectRollback()
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name: "paid with another transaction",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("UPDATE bookings").WillReturnRows(sqlmock.NewRows(bookingCols))
				mock.ExpectQuery("SELECT EXISTS").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectRollback()
			},
			wantErr: repository.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, mock := newMock(t)
			repo := NewBookingRepository(base)
			tt.setup(mock)

			booking, err := repo.MarkPaid(context.Background(), "b-1", &model.Payment{
				TransactionID: "pi_1",
				Amount:        5000,
				Currency:      "usd",
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.True(t, booking.Paid)
				assert.Equal(t, "pi_1", *booking.TransactionID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_MarkPaidDefaultsAmountToPrice(t *testing.T) {
	base, mock := newMock(t)
	repo := NewBookingRepository(base)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE bookings").
		WithArgs("b-1", "pi_1").
		WillReturnRows(bookingRow("b-1", true, "pi_1"))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), "b-1", "pi_1", int64(5000), "usd", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT booking_id FROM payments").
		WillReturnRows(sqlmock.NewRows([]string{"booking_id"}).AddRow("b-1"))
	mock.ExpectCommit()

	payment := &model.Payment{TransactionID: "pi_1", Currency: "usd"}
	_, err := repo.MarkPaid(context.Background(), "b-1", payment)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), payment.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpsertProfileKeepsUnsentFields(t *testing.T) {
	base, mock := newMock(t)
	repo := NewUserRepository(base)

	mock.ExpectQuery(`SET name = COALESCE\(NULLIF\(EXCLUDED.name, ''\), users.name\)`).
		WithArgs(sqlmock.AnyArg(), "ann@example.com", "", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}))

	res, err := repo.UpsertProfile(context.Background(), &model.UserProfile{Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Equal(t, model.UpsertResult{MatchedCount: 1}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetRole(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
		want model.UpsertResult
	}{
		{"inserts unknown user", sqlmock.NewRows([]string{"inserted"}).AddRow(true), model.UpsertResult{UpsertedCount: 1}},
		{"updates existing user", sqlmock.NewRows([]string{"inserted"}).AddRow(false), model.UpsertResult{MatchedCount: 1, ModifiedCount: 1}},
		{"already admin", sqlmock.NewRows([]string{"inserted"}), model.UpsertResult{MatchedCount: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, mock := newMock(t)
			repo := NewUserRepository(base)

			mock.ExpectQuery("INSERT INTO users").
				WithArgs(sqlmock.AnyArg(), "bob@example.com", "Admin").
				WillReturnRows(tt.rows)

			got, err := repo.SetRole(context.Background(), "bob@example.com", model.RoleAdmin)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestServiceRepository_ListKeepsSlotOrder(t *testing.T) {
	base, mock := newMock(t)
	repo := NewServiceRepository(base)

	mock.ExpectQuery("SELECT id, name, slots, price").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slots", "price"}).
			AddRow("s-1", "Cleaning", "{\"8:00 AM\",\"8:30 AM\",\"9:00 AM\"}", 50.0).
			AddRow("s-2", "Whitening", "{}", 80.0))

	services, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, []string{"8:00 AM", "8:30 AM", "9:00 AM"}, services[0].Slots)
	assert.Equal(t, []string{}, services[1].Slots)
}

func TestOutboxRepository_UpdateStatusMissing(t *testing.T) {
	base, mock := newMock(t)
	repo := NewOutboxRepository(base)

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs("PROCESSED", nil, "e-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "e-1", model.OutboxStatusProcessed, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOutboxRepository_DeleteProcessedBefore(t *testing.T) {
	base, mock := newMock(t)
	repo := NewOutboxRepository(base)
	cutoff := time.Now().Add(-time.Hour)

	mock.ExpectExec("DELETE FROM outbox_events").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteProcessedBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
