package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements the enqueuer and worker repositories in memory.
// Suitable for tests and single-process deployments; production setups use
// the Postgres repository.
type MemoryStorage struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task
	dlq   map[uuid.UUID]*DeadLetter

	lockTicker *time.Ticker
	done       chan struct{}
	closeOnce  sync.Once
}

// NewMemoryStorage creates an in-memory queue storage. A background
// goroutine releases locks held by crashed or hung workers.
func NewMemoryStorage() *MemoryStorage {
	ms := &MemoryStorage{
		tasks: make(map[uuid.UUID]*Task),
		dlq:   make(map[uuid.UUID]*DeadLetter),
		done:  make(chan struct{}),
	}

	ms.lockTicker = time.NewTicker(time.Second)
	go ms.lockExpirationLoop()

	return ms
}

// Close stops the background lock expiration goroutine.
func (ms *MemoryStorage) Close() error {
	ms.closeOnce.Do(func() {
		close(ms.done)
		ms.lockTicker.Stop()
	})
	return nil
}

// CreateTask implements EnqueuerRepository.
func (ms *MemoryStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[task.ID]; exists {
		return fmt.Errorf("task with ID %s already exists", task.ID)
	}

	taskCopy := *task
	ms.tasks[task.ID] = &taskCopy
	return nil
}

// ClaimTask implements WorkerRepository. The oldest claimable pending task
// wins, so insertion order is preserved within a queue.
func (ms *MemoryStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Task
	for _, task := range ms.tasks {
		if task.Status != TaskStatusPending {
			continue
		}
		if !slices.Contains(queues, task.Queue) {
			continue
		}
		if task.ScheduledAt.After(now) {
			continue
		}
		if best == nil || task.ScheduledAt.Before(best.ScheduledAt) {
			best = task
		}
	}

	if best == nil {
		return nil, ErrNoTaskToClaim
	}

	lockUntil := now.Add(lockDuration)
	best.Status = TaskStatusProcessing
	best.LockedUntil = &lockUntil
	best.LockedBy = &workerID

	taskCopy := *best
	return &taskCopy, nil
}

// CompleteTask implements WorkerRepository.
func (ms *MemoryStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return ErrTaskNotFound
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("task %s is not in processing state", taskID)
	}

	now := time.Now()
	task.Status = TaskStatusCompleted
	task.ProcessedAt = &now
	task.LockedUntil = nil
	task.LockedBy = nil
	return nil
}

// FailTask implements WorkerRepository. Tasks with retries left go back to
// pending with a linear backoff; exhausted tasks become failed and await
// MoveToDLQ.
func (ms *MemoryStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return ErrTaskNotFound
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("task %s is not in processing state", taskID)
	}

	task.RetryCount++
	task.Error = &errorMsg
	task.LockedUntil = nil
	task.LockedBy = nil

	if task.RetryCount > task.MaxRetries {
		task.Status = TaskStatusFailed
	} else {
		task.Status = TaskStatusPending
		// Linear backoff keeps persistent failures from hammering handlers.
		task.ScheduledAt = time.Now().Add(time.Duration(task.RetryCount) * 30 * time.Second)
	}
	return nil
}

// MoveToDLQ implements WorkerRepository.
func (ms *MemoryStorage) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return ErrTaskNotFound
	}

	entry := &DeadLetter{
		ID:         uuid.New(),
		TaskID:     task.ID,
		Queue:      task.Queue,
		TaskName:   task.TaskName,
		Payload:    task.Payload,
		RetryCount: task.RetryCount,
		FailedAt:   time.Now(),
		CreatedAt:  time.Now(),
	}
	if task.Error != nil {
		entry.Error = *task.Error
	}

	ms.dlq[entry.ID] = entry
	delete(ms.tasks, taskID)
	return nil
}

// DeadLetters returns a copy of the dead-letter queue for inspection.
func (ms *MemoryStorage) DeadLetters() []DeadLetter {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]DeadLetter, 0, len(ms.dlq))
	for _, entry := range ms.dlq {
		out = append(out, *entry)
	}
	return out
}

func (ms *MemoryStorage) lockExpirationLoop() {
	for {
		select {
		case <-ms.lockTicker.C:
			ms.expireLocks()
		case <-ms.done:
			return
		}
	}
}

// expireLocks resets processing tasks whose lock has lapsed back to
// pending so another worker can pick them up after a crash.
func (ms *MemoryStorage) expireLocks() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for _, task := range ms.tasks {
		if task.Status == TaskStatusProcessing && task.LockedUntil != nil && task.LockedUntil.Before(now) {
			task.Status = TaskStatusPending
			task.LockedUntil = nil
			task.LockedBy = nil
		}
	}
}
