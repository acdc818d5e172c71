package authority

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/repository/memory"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

type failingUsers struct {
	repository.UserRepository
}

func (failingUsers) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, stderrors.New("connection refused")
}

func setup(t *testing.T) (*Service, *repository.Repositories) {
	t.Helper()
	repos := memory.NewRepositories()
	_, err := repos.Users.SetRole(context.Background(), "root@example.com", model.RoleAdmin)
	require.NoError(t, err)
	_, err = repos.Users.UpsertProfile(context.Background(), &model.UserProfile{Email: "ann@example.com"})
	require.NoError(t, err)

	return NewService(repos.Users, event.NewEventService(repos.Outbox), logger.Nop()), repos
}

func TestIsAdmin(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		email string
		want  bool
	}{
		{"root@example.com", true},
		{"ann@example.com", false},
		{"ghost@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got, err := svc.IsAdmin(ctx, tt.email)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsAdminStoreFailureGrantsNothing(t *testing.T) {
	svc := NewService(failingUsers{}, nil, logger.Nop())

	ok, err := svc.IsAdmin(context.Background(), "root@example.com")
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, errors.StatusCode(err))

	err = svc.RequireAdmin(context.Background(), &model.Identity{Email: "root@example.com"})
	assert.Error(t, err)
}

func TestRequireAdmin(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	assert.NoError(t, svc.RequireAdmin(ctx, &model.Identity{Email: "root@example.com"}))
	assert.Equal(t, http.StatusForbidden, errors.StatusCode(svc.RequireAdmin(ctx, &model.Identity{Email: "ann@example.com"})))
	assert.Equal(t, http.StatusUnauthorized, errors.StatusCode(svc.RequireAdmin(ctx, nil)))
}

func TestSetAdminChecksRequesterNotTarget(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()

	_, err := svc.SetAdmin(ctx, &model.Identity{Email: "ann@example.com"}, "ann@example.com")
	assert.Equal(t, http.StatusForbidden, errors.StatusCode(err))

	user, err := repos.Users.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleNone, user.Role)
}

func TestSetAdminReportsUpsertBranch(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	root := &model.Identity{Email: "root@example.com"}

	result, err := svc.SetAdmin(ctx, root, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.UpsertResult{MatchedCount: 1, ModifiedCount: 1}, result)

	result, err = svc.SetAdmin(ctx, root, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.UpsertResult{MatchedCount: 1}, result)

	result, err = svc.SetAdmin(ctx, root, "new@example.com")
	require.NoError(t, err)
	assert.True(t, result.Inserted())

	ok, err := svc.IsAdmin(ctx, "new@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	events := repos.Outbox.(*memory.OutboxRepository).Events()
	assert.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, model.EventUserPromoted, e.EventType)
	}
}
