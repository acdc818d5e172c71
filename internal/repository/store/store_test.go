package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/config"
)

func TestOpenMemory(t *testing.T) {
	repos, closeFn, err := Open(context.Background(), config.DatabaseConfig{Driver: "memory"})
	require.NoError(t, err)
	defer closeFn()

	assert.NotNil(t, repos.Bookings)
	assert.NoError(t, repos.Health.Ping(context.Background()))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite"})
	assert.Error(t, err)
}
