package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type serviceRepository struct {
	BaseRepository
}

type serviceRow struct {
	ID    string         `db:"id"`
	Name  string         `db:"name"`
	Slots pq.StringArray `db:"slots"`
	Price float64        `db:"price"`
}

func (row serviceRow) toModel() *model.Service {
	slots := []string(row.Slots)
	if slots == nil {
		slots = []string{}
	}
	return &model.Service{ID: row.ID, Name: row.Name, Slots: slots, Price: row.Price}
}

func NewServiceRepository(base BaseRepository) repository.ServiceRepository {
	return &serviceRepository{base}
}

func (r *serviceRepository) List(ctx context.Context) ([]*model.Service, error) {
	query := `
		SELECT id, name, slots, price
		FROM services
		ORDER BY name
	`
	var rows []serviceRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	services := make([]*model.Service, 0, len(rows))
	for _, row := range rows {
		services = append(services, row.toModel())
	}
	return services, nil
}

func (r *serviceRepository) ListNames(ctx context.Context) ([]model.ServiceName, error) {
	names := make([]model.ServiceName, 0)
	if err := r.db.SelectContext(ctx, &names, `SELECT name FROM services ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list service names: %w", err)
	}
	return names, nil
}

func (r *serviceRepository) GetByName(ctx context.Context, name string) (*model.Service, error) {
	query := `
		SELECT id, name, slots, price
		FROM services
		WHERE name = $1
	`
	var row serviceRow
	if err := r.db.GetContext(ctx, &row, query, name); err != nil {
		return nil, fmt.Errorf("failed to get service: %w", notFound(err))
	}
	return row.toModel(), nil
}

func (r *serviceRepository) Upsert(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (id, name, slots, price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET slots = EXCLUDED.slots, price = EXCLUDED.price
		RETURNING id
	`
	if service.ID == "" {
		service.ID = uuid.NewString()
	}

	if err := r.db.GetContext(ctx, &service.ID, query,
		service.ID,
		service.Name,
		pq.StringArray(service.Slots),
		service.Price,
	); err != nil {
		return fmt.Errorf("failed to upsert service: %w", err)
	}
	return nil
}
