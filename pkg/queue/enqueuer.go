package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnqueuerRepository is the storage interface for task creation.
type EnqueuerRepository interface {
	CreateTask(ctx context.Context, task *Task) error
}

// Enqueuer places tasks on queues.
type Enqueuer struct {
	repo         EnqueuerRepository
	defaultQueue string
}

// EnqueuerOption configures an Enqueuer.
type EnqueuerOption func(*Enqueuer)

// WithDefaultQueue sets the queue used when Enqueue is called without
// WithQueue.
func WithDefaultQueue(name string) EnqueuerOption {
	return func(e *Enqueuer) {
		if name != "" {
			e.defaultQueue = name
		}
	}
}

// NewEnqueuer creates a new Enqueuer.
func NewEnqueuer(repo EnqueuerRepository, opts ...EnqueuerOption) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	e := &Enqueuer{
		repo:         repo,
		defaultQueue: DefaultQueueName,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

type enqueueOptions struct {
	queue      string
	taskName   string
	maxRetries int8
	delay      time.Duration
}

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueOptions)

// WithQueue overrides the queue for this task.
func WithQueue(name string) EnqueueOption {
	return func(o *enqueueOptions) {
		if name != "" {
			o.queue = name
		}
	}
}

// WithTaskName overrides the task name derived from the payload type.
func WithTaskName(name string) EnqueueOption {
	return func(o *enqueueOptions) {
		if name != "" {
			o.taskName = name
		}
	}
}

// WithMaxRetries sets how many times a failing task is retried before it is
// moved to the dead-letter queue. Zero means no retry: the first failure
// dead-letters the task immediately.
func WithMaxRetries(n int8) EnqueueOption {
	return func(o *enqueueOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithDelay schedules the task for later execution.
func WithDelay(d time.Duration) EnqueueOption {
	return func(o *enqueueOptions) {
		if d > 0 {
			o.delay = d
		}
	}
}

// Enqueue marshals the payload and stores a pending task.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any, opts ...EnqueueOption) error {
	if payload == nil {
		return ErrPayloadNil
	}

	options := &enqueueOptions{
		queue:      e.defaultQueue,
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(options)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload of type %T: %w", payload, err)
	}

	taskName := options.taskName
	if taskName == "" {
		taskName = qualifiedStructName(payload)
	}

	task := &Task{
		ID:          uuid.New(),
		Queue:       options.queue,
		TaskName:    taskName,
		Payload:     data,
		Status:      TaskStatusPending,
		MaxRetries:  options.maxRetries,
		ScheduledAt: time.Now().Add(options.delay),
		CreatedAt:   time.Now(),
	}

	if err := e.repo.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("failed to create task %q in queue %q: %w", task.TaskName, task.Queue, err)
	}
	return nil
}
