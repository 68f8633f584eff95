package queue

import "errors"

var (
	// ErrRepositoryNil is returned when a nil repository is provided.
	ErrRepositoryNil = errors.New("repository cannot be nil")

	// ErrPayloadNil is returned when attempting to enqueue a nil payload.
	ErrPayloadNil = errors.New("payload cannot be nil")

	// ErrHandlerNotFound is returned when no handler is registered for a task.
	ErrHandlerNotFound = errors.New("no handler registered for task type")

	// ErrNoHandlers is returned when the worker starts with no handlers registered.
	ErrNoHandlers = errors.New("no task handlers registered")

	// ErrNoTaskToClaim signals that no pending task is currently claimable.
	ErrNoTaskToClaim = errors.New("no task to claim")

	// ErrTaskNotFound is returned for operations on an unknown task ID.
	ErrTaskNotFound = errors.New("task not found")
)
