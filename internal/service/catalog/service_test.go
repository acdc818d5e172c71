package catalog

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/repository/memory"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

func newCatalog(t *testing.T, ttl time.Duration) (*Service, *repository.Repositories) {
	t.Helper()
	repos := memory.NewRepositories()
	ctx := context.Background()
	require.NoError(t, repos.Services.Upsert(ctx, &model.Service{ID: uuid.NewString(), Name: "Teeth Whitening", Slots: []string{"8am", "9am"}}))
	require.NoError(t, repos.Services.Upsert(ctx, &model.Service{ID: uuid.NewString(), Name: "Cleaning", Slots: []string{"9am", "10am", "11am"}}))

	svc := NewService(repos.Services, repos.Doctors, event.NewEventService(repos.Outbox), logger.Nop(), ttl)
	return svc, repos
}

func TestListServicesKeepsSlotOrder(t *testing.T) {
	svc, _ := newCatalog(t, 0)

	services, err := svc.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "Cleaning", services[0].Name)
	assert.Equal(t, []string{"9am", "10am", "11am"}, services[0].Slots)

	names, err := svc.ListServiceNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.ServiceName{{Name: "Cleaning"}, {Name: "Teeth Whitening"}}, names)
}

func TestDoctorListIsCachedUntilMutation(t *testing.T) {
	svc, repos := newCatalog(t, time.Minute)
	ctx := context.Background()

	doctors, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Empty(t, doctors)

	require.NoError(t, repos.Doctors.Create(ctx, &model.Doctor{ID: uuid.NewString(), Name: "Out of band"}))
	doctors, err = svc.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Empty(t, doctors, "served from cache")

	_, err = svc.AddDoctor(ctx, &model.CreateDoctorRequest{Name: "Dr. Rahman", Email: "rahman@example.com", Specialty: "Orthodontics"})
	require.NoError(t, err)
	doctors, err = svc.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Len(t, doctors, 2)
}

func TestDeleteDoctor(t *testing.T) {
	svc, repos := newCatalog(t, time.Minute)
	ctx := context.Background()
	admin := &model.Identity{Email: "root@example.com"}

	doctor, err := svc.AddDoctor(ctx, &model.CreateDoctorRequest{Name: "Dr. Rahman", Email: "rahman@example.com", Specialty: "Orthodontics"})
	require.NoError(t, err)

	result, err := svc.DeleteDoctor(ctx, admin, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.DeletedCount)

	doctors, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Empty(t, doctors)

	_, err = svc.DeleteDoctor(ctx, admin, doctor.ID)
	assert.Equal(t, http.StatusNotFound, errors.StatusCode(err))

	_, err = svc.DeleteDoctor(ctx, admin, "not-a-uuid")
	assert.Equal(t, http.StatusNotFound, errors.StatusCode(err))

	events := repos.Outbox.(*memory.OutboxRepository).Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventDoctorDeleted, events[0].EventType)
}

func TestFindService(t *testing.T) {
	svc, _ := newCatalog(t, time.Minute)

	service, err := svc.FindService(context.Background(), "Cleaning")
	require.NoError(t, err)
	assert.True(t, service.HasSlot("10am"))

	_, err = svc.FindService(context.Background(), "Surgery")
	assert.Equal(t, http.StatusNotFound, errors.StatusCode(err))
}
