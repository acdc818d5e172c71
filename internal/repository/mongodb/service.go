package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type serviceRepository struct {
	coll *mongo.Collection
}

func NewServiceRepository(db *mongo.Database) repository.ServiceRepository {
	return &serviceRepository{coll: db.Collection(servicesCollection)}
}

func (r *serviceRepository) List(ctx context.Context) ([]*model.Service, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	services := make([]*model.Service, 0)
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	for _, s := range services {
		if s.Slots == nil {
			s.Slots = []string{}
		}
	}
	return services, nil
}

func (r *serviceRepository) ListNames(ctx context.Context) ([]model.ServiceName, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetProjection(bson.M{"name": 1, "_id": 0})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list service names: %w", err)
	}

	names := make([]model.ServiceName, 0)
	if err := cursor.All(ctx, &names); err != nil {
		return nil, fmt.Errorf("failed to decode service names: %w", err)
	}
	return names, nil
}

func (r *serviceRepository) GetByName(ctx context.Context, name string) (*model.Service, error) {
	var service model.Service
	if err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&service); err != nil {
		return nil, fmt.Errorf("failed to get service: %w", notFound(err))
	}
	return &service, nil
}

func (r *serviceRepository) Upsert(ctx context.Context, service *model.Service) error {
	if service.ID == "" {
		service.ID = newID()
	}
	update := bson.M{
		"$set":         bson.M{"slots": service.Slots, "price": service.Price},
		"$setOnInsert": bson.M{"_id": service.ID},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored model.Service
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"name": service.Name}, update, opts).Decode(&stored); err != nil {
		return fmt.Errorf("failed to upsert service: %w", err)
	}
	service.ID = stored.ID
	return nil
}
