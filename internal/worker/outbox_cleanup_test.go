package worker

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/memory"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

func TestCleanupDeletesOnlyOldProcessedEvents(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	for _, id := range []string{"done", "pending"} {
		require.NoError(t, repo.Create(ctx, &model.OutboxEvent{ID: id, EventType: model.EventBookingCreated}))
	}
	require.NoError(t, repo.UpdateStatus(ctx, "done", model.OutboxStatusProcessed, nil))

	m := metrics.New("test", nil)
	w := NewOutboxCleanupWorker(repo, time.Hour, time.Minute, logger.Nop(), m)

	n, err := w.Cleanup(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "recently processed events are kept")

	w.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	n, err = w.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsCleaned))

	remaining := repo.Events()
	require.Len(t, remaining, 1)
	assert.Equal(t, "pending", remaining[0].ID)
}
