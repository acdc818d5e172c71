package catalog

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

var defaultSlots = []string{
	"08.00 AM - 08.30 AM",
	"08.30 AM - 09.00 AM",
	"09.00 AM - 09.30 AM",
	"09.30 AM - 10.00 AM",
	"10.00 AM - 10.30 AM",
	"10.30 AM - 11.00 AM",
	"11.00 AM - 11.30 AM",
	"11.30 AM - 12.00 PM",
	"01.00 PM - 01.30 PM",
	"01.30 PM - 02.00 PM",
	"02.00 PM - 02.30 PM",
	"02.30 PM - 03.00 PM",
	"03.00 PM - 03.30 PM",
	"03.30 PM - 04.00 PM",
	"04.00 PM - 04.30 PM",
	"04.30 PM - 05.00 PM",
}

// DefaultServices is the catalog a fresh installation starts with.
func DefaultServices() []*model.Service {
	names := []struct {
		name  string
		price float64
	}{
		{"Teeth Orthodontics", 99},
		{"Cosmetic Dentistry", 149},
		{"Teeth Cleaning", 49},
		{"Cavity Protection", 79},
		{"Pediatric Dental", 69},
		{"Oral Surgery", 199},
	}

	services := make([]*model.Service, 0, len(names))
	for _, n := range names {
		slots := make([]string, len(defaultSlots))
		copy(slots, defaultSlots)
		services = append(services, &model.Service{Name: n.name, Slots: slots, Price: n.price})
	}
	return services
}

// Seed upserts services by name, so running it twice changes nothing.
func Seed(ctx context.Context, repo repository.ServiceRepository, services []*model.Service) error {
	for _, svc := range services {
		if err := repo.Upsert(ctx, svc); err != nil {
			return fmt.Errorf("failed to seed service %q: %w", svc.Name, err)
		}
	}
	return nil
}
