package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type bookingRepository struct {
	bookings *mongo.Collection
	payments *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) repository.BookingRepository {
	return &bookingRepository{
		bookings: db.Collection(bookingsCollection),
		payments: db.Collection(paymentsCollection),
	}
}

func keyFilter(key model.NaturalKey) bson.M {
	return bson.M{
		"patientName":   key.PatientName,
		"treatmentName": key.TreatmentName,
		"email":         key.Email,
	}
}

func (r *bookingRepository) FindByNaturalKey(ctx context.Context, key model.NaturalKey) (*model.Booking, error) {
	var booking model.Booking
	if err := r.bookings.FindOne(ctx, keyFilter(key)).Decode(&booking); err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", notFound(err))
	}
	return &booking, nil
}

// CreateIfAbsent treats a duplicate key error on the natural-key index as
// "already booked" and returns the stored booking.
func (r *bookingRepository) CreateIfAbsent(ctx context.Context, booking *model.Booking) (*model.Booking, bool, error) {
	stored := *booking
	if stored.ID == "" {
		stored.ID = newID()
	}
	stored.Paid = false
	stored.TransactionID = nil
	stored.Touch(now())

	_, err := r.bookings.InsertOne(ctx, &stored)
	if err == nil {
		return &stored, true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, false, fmt.Errorf("failed to create booking: %w", err)
	}

	existing, err := r.FindByNaturalKey(ctx, booking.Key())
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *bookingRepository) Get(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	if err := r.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", notFound(err))
	}
	return &booking, nil
}

func (r *bookingRepository) ListByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	return r.list(ctx, bson.M{"date": date})
}

func (r *bookingRepository) ListByEmail(ctx context.Context, email string) ([]*model.Booking, error) {
	return r.list(ctx, bson.M{"email": email})
}

func (r *bookingRepository) list(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	cursor, err := r.bookings.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*model.Booking, 0)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// MarkPaid is a conditional booking update followed by a payment upsert
// keyed by transaction id. When the payment turns out to belong to another
// booking the update is reverted, so a transaction id pays one booking only.
func (r *bookingRepository) MarkPaid(ctx context.Context, id string, payment *model.Payment) (*model.Booking, error) {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"paid": bson.M{"$ne": true}},
			bson.M{"transactionId": payment.TransactionID},
		},
	}
	updatedAt := now()
	update := bson.M{"$set": bson.M{
		"paid":          true,
		"transactionId": payment.TransactionID,
		"updatedAt":     updatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var prior model.Booking
	err := r.bookings.FindOneAndUpdate(ctx, filter, update, opts).Decode(&prior)
	if errors.Is(err, mongo.ErrNoDocuments) {
		count, countErr := r.bookings.CountDocuments(ctx, bson.M{"_id": id})
		if countErr != nil {
			return nil, fmt.Errorf("failed to check booking: %w", countErr)
		}
		if count == 0 {
			return nil, repository.ErrNotFound
		}
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	if payment.ID == "" {
		payment.ID = newID()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now()
	}
	if payment.Amount == 0 {
		payment.Amount = model.MinorUnits(prior.Price)
	}
	payment.BookingID = id

	_, err = r.payments.UpdateOne(ctx,
		bson.M{"transactionId": payment.TransactionID},
		bson.M{"$setOnInsert": bson.M{
			"_id":       payment.ID,
			"bookingId": payment.BookingID,
			"amount":    payment.Amount,
			"currency":  payment.Currency,
			"createdAt": payment.CreatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	var recorded model.Payment
	if err := r.payments.FindOne(ctx, bson.M{"transactionId": payment.TransactionID}).Decode(&recorded); err != nil {
		return nil, fmt.Errorf("failed to check payment: %w", err)
	}
	if recorded.BookingID != id {
		if !prior.Paid {
			if err := r.revertPaid(ctx, id, payment.TransactionID); err != nil {
				return nil, err
			}
		}
		return nil, repository.ErrConflict
	}

	booking := prior
	tx := payment.TransactionID
	booking.Paid = true
	booking.TransactionID = &tx
	booking.UpdatedAt = updatedAt
	return &booking, nil
}

func (r *bookingRepository) revertPaid(ctx context.Context, id, transactionID string) error {
	_, err := r.bookings.UpdateOne(ctx,
		bson.M{"_id": id, "transactionId": transactionID},
		bson.M{
			"$set":   bson.M{"paid": false, "updatedAt": now()},
			"$unset": bson.M{"transactionId": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to revert booking payment: %w", err)
	}
	return nil
}
