// Package mongodb stores the clinic data in MongoDB. Uniqueness of the
// booking natural key, user e-mail, service name and payment transaction id
// is enforced by the indexes created in EnsureIndexes.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

const (
	servicesCollection = "services"
	doctorsCollection  = "doctors"
	bookingsCollection = "bookings"
	usersCollection    = "users"
	paymentsCollection = "payments"
	outboxCollection   = "outbox_events"
)

func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. It is
// idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		bookingsCollection: {
			{Keys: bson.D{{Key: "patientName", Value: 1}, {Key: "treatmentName", Value: 1}, {Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		servicesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		paymentsCollection: {
			{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: unique},
		},
		outboxCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// NewRepositories wires every repository to db.
func NewRepositories(db *mongo.Database) *repository.Repositories {
	return &repository.Repositories{
		Services: NewServiceRepository(db),
		Doctors:  NewDoctorRepository(db),
		Bookings: NewBookingRepository(db),
		Users:    NewUserRepository(db),
		Outbox:   NewOutboxRepository(db),
		Health:   healthChecker{client: db.Client()},
	}
}

type healthChecker struct {
	client *mongo.Client
}

func (h healthChecker) Ping(ctx context.Context) error {
	return h.client.Ping(ctx, readpref.Primary())
}

func newID() string {
	return uuid.NewString()
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

func toUpsertResult(res *mongo.UpdateResult) model.UpsertResult {
	return model.UpsertResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
}

func now() time.Time {
	return time.Now().UTC()
}
