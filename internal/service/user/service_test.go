package user

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/memory"
	"github.com/jwalitptl/clinic-api/internal/service/identity"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

func TestLoginIssuesVerifiableToken(t *testing.T) {
	jwt, err := auth.NewJWT("secret", 24*time.Hour)
	require.NoError(t, err)
	ids := identity.NewService(jwt)
	users := memory.NewUserRepository()
	svc := NewService(users, ids, logger.Nop())

	resp, err := svc.Login(context.Background(), &model.UserProfile{Email: "ann@example.com", Name: "Ann"})
	require.NoError(t, err)

	id, err := ids.Verify(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", id.Email)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ann", list[0].Name)
}

func TestLoginKeepsStoredRole(t *testing.T) {
	jwt, err := auth.NewJWT("secret", time.Hour)
	require.NoError(t, err)
	users := memory.NewUserRepository()
	svc := NewService(users, identity.NewService(jwt), logger.Nop())
	ctx := context.Background()

	_, err = users.SetRole(ctx, "root@example.com", model.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Login(ctx, &model.UserProfile{Email: "root@example.com", Name: "Root"})
	require.NoError(t, err)

	u, err := users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "Root", u.Name)
}

func TestLoginRequiresEmail(t *testing.T) {
	svc := NewService(memory.NewUserRepository(), nil, logger.Nop())

	_, err := svc.Login(context.Background(), &model.UserProfile{})
	assert.Equal(t, http.StatusBadRequest, errors.StatusCode(err))
}
