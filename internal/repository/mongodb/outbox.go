package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type outboxRepository struct {
	coll *mongo.Collection
}

func NewOutboxRepository(db *mongo.Database) repository.OutboxRepository {
	return &outboxRepository{coll: db.Collection(outboxCollection)}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	if event.ID == "" {
		event.ID = newID()
	}
	event.CreatedAt = now()
	event.UpdatedAt = event.CreatedAt
	event.Status = model.OutboxStatusPending

	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// ClaimPendingEvents claims one document per round trip; each claim is an
// atomic findAndModify so concurrent workers never share an event.
func (r *outboxRepository) ClaimPendingEvents(ctx context.Context, limit, maxRetries int) ([]*model.OutboxEvent, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"status": model.OutboxStatusPending},
		bson.M{"status": model.OutboxStatusFailed, "retryCount": bson.M{"$lt": maxRetries}},
	}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetReturnDocument(options.After)

	events := make([]*model.OutboxEvent, 0, limit)
	for len(events) < limit {
		update := bson.M{"$set": bson.M{"status": model.OutboxStatusProcessing, "updatedAt": now()}}

		var event model.OutboxEvent
		err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&event)
		if errors.Is(err, mongo.ErrNoDocuments) {
			break
		}
		if err != nil {
			return events, fmt.Errorf("failed to claim outbox event: %w", err)
		}
		events = append(events, &event)
	}
	return events, nil
}

func (r *outboxRepository) UpdateStatus(ctx context.Context, id string, status model.OutboxStatus, errorMessage *string) error {
	t := now()
	set := bson.M{"status": status, "errorMessage": errorMessage, "updatedAt": t}
	update := bson.M{"$set": set}
	switch status {
	case model.OutboxStatusProcessed:
		set["processedAt"] = t
	case model.OutboxStatusFailed:
		update["$inc"] = bson.M{"retryCount": 1}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update outbox event: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{
		"status":      model.OutboxStatusProcessed,
		"processedAt": bson.M{"$lt": before},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}
	return res.DeletedCount, nil
}
