package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

const (
	TypeBookingConfirmation = "booking:confirmation"
	// QueueName is the asynq queue confirmations are enqueued on.
	QueueName = "notifications"
)

const maxTaskRetries = 5

// Enqueuer is the part of *asynq.Client the queue notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier hands confirmations to the worker through asynq.
type QueueNotifier struct {
	client Enqueuer
	queue  string
}

func NewQueueNotifier(client Enqueuer, queue string) *QueueNotifier {
	if queue == "" {
		queue = QueueName
	}
	return &QueueNotifier{client: client, queue: queue}
}

func (n *QueueNotifier) BookingConfirmed(ctx context.Context, booking *model.Booking) error {
	task, err := NewConfirmationTask(booking)
	if err != nil {
		return err
	}
	if _, err := n.client.EnqueueContext(ctx, task, asynq.Queue(n.queue), asynq.MaxRetry(maxTaskRetries)); err != nil {
		return fmt.Errorf("failed to enqueue booking confirmation: %w", err)
	}
	return nil
}

func NewConfirmationTask(booking *model.Booking) (*asynq.Task, error) {
	payload, err := json.Marshal(booking)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking: %w", err)
	}
	return asynq.NewTask(TypeBookingConfirmation, payload), nil
}

// TaskHandler consumes booking:confirmation tasks in the worker.
type TaskHandler struct {
	notifier Notifier
	log      *logger.Logger
}

func NewTaskHandler(notifier Notifier, log *logger.Logger) *TaskHandler {
	return &TaskHandler{notifier: notifier, log: log}
}

func (h *TaskHandler) Register(mux *asynq.ServeMux) {
	mux.Handle(TypeBookingConfirmation, h)
}

func (h *TaskHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var booking model.Booking
	if err := json.Unmarshal(task.Payload(), &booking); err != nil {
		h.log.Error(err, "invalid booking confirmation payload")
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.notifier.BookingConfirmed(ctx, &booking); err != nil {
		h.log.Warn("booking confirmation failed", "booking_id", booking.ID, "error", err.Error())
		return err
	}

	h.log.Debug("booking confirmation sent", "booking_id", booking.ID)
	return nil
}
