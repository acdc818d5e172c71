package identity

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

func newService(t *testing.T, secret string) *Service {
	t.Helper()
	j, err := auth.NewJWT(secret, 24*time.Hour)
	require.NoError(t, err)
	return NewService(j)
}

func TestIssueThenVerify(t *testing.T) {
	svc := newService(t, "secret")

	token, err := svc.Issue("ann@example.com")
	require.NoError(t, err)

	id, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", id.Email)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), id.ExpiresAt, time.Minute)
}

func TestVerifyMissingTokenIsUnauthenticated(t *testing.T) {
	svc := newService(t, "secret")

	_, err := svc.Verify(context.Background(), "")
	assert.Equal(t, http.StatusUnauthorized, errors.StatusCode(err))
}

func TestVerifyBadTokenIsForbidden(t *testing.T) {
	svc := newService(t, "secret")
	token, err := newService(t, "other").Issue("ann@example.com")
	require.NoError(t, err)

	for _, raw := range []string{token, "garbage"} {
		_, err := svc.Verify(context.Background(), raw)
		assert.Equal(t, http.StatusForbidden, errors.StatusCode(err))
	}
}
