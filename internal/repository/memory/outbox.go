package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type OutboxRepository struct {
	mu     sync.Mutex
	events map[string]*model.OutboxEvent
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{events: make(map[string]*model.OutboxEvent)}
}

func (r *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == "" {
		event.ID = newID()
	}
	now := time.Now()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	if event.Status == "" {
		event.Status = model.OutboxStatusPending
	}
	e := *event
	r.events[e.ID] = &e
	return nil
}

func (r *OutboxRepository) ClaimPendingEvents(ctx context.Context, limit, maxRetries int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidates := make([]*model.OutboxEvent, 0)
	for _, e := range r.events {
		if e.Status == model.OutboxStatusPending ||
			(e.Status == model.OutboxStatusFailed && e.RetryCount < maxRetries) {
			candidates = append(candidates, e)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].CreatedAt.Before(candidates[j].CreatedAt) })
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	claimed := make([]*model.OutboxEvent, 0, len(candidates))
	for _, e := range candidates {
		e.Status = model.OutboxStatusProcessing
		e.UpdatedAt = time.Now()
		c := *e
		claimed = append(claimed, &c)
	}
	return claimed, nil
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, id string, status model.OutboxStatus, errorMessage *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	e.Status = status
	e.ErrorMessage = errorMessage
	e.UpdatedAt = now
	switch status {
	case model.OutboxStatusProcessed:
		e.ProcessedAt = &now
	case model.OutboxStatusFailed:
		e.RetryCount++
	}
	return nil
}

func (r *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, e := range r.events {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.events, id)
			deleted++
		}
	}
	return deleted, nil
}

// Events returns a snapshot of all events. Test helper.
func (r *OutboxRepository) Events() []*model.OutboxEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]*model.OutboxEvent, 0, len(r.events))
	for _, e := range r.events {
		c := *e
		events = append(events, &c)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	return events
}
