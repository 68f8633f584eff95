package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/queue"
)

func newTask(queueName string, maxRetries int8, scheduledAt time.Time) *queue.Task {
	return &queue.Task{
		ID:          uuid.New(),
		Queue:       queueName,
		TaskName:    "test-task",
		Payload:     []byte(`{}`),
		Status:      queue.TaskStatusPending,
		MaxRetries:  maxRetries,
		ScheduledAt: scheduledAt,
		CreatedAt:   time.Now(),
	}
}

func TestMemoryStorageClaimOrder(t *testing.T) {
	t.Parallel()

	repo := queue.NewMemoryStorage()
	defer repo.Close()
	ctx := context.Background()

	older := newTask("q", 3, time.Now().Add(-2*time.Minute))
	newer := newTask("q", 3, time.Now().Add(-time.Minute))
	require.NoError(t, repo.CreateTask(ctx, newer))
	require.NoError(t, repo.CreateTask(ctx, older))

	claimed, err := repo.ClaimTask(ctx, uuid.New(), []string{"q"}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, older.ID, claimed.ID, "oldest scheduled task is claimed first")

	claimed2, err := repo.ClaimTask(ctx, uuid.New(), []string{"q"}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, claimed2.ID)

	_, err = repo.ClaimTask(ctx, uuid.New(), []string{"q"}, time.Minute)
	assert.ErrorIs(t, err, queue.ErrNoTaskToClaim)
}

func TestMemoryStorageClaimFiltersQueues(t *testing.T) {
	t.Parallel()

	repo := queue.NewMemoryStorage()
	defer repo.Close()
	ctx := context.Background()

	require.NoError(t, repo.CreateTask(ctx, newTask("other", 3, time.Now().Add(-time.Minute))))

	_, err := repo.ClaimTask(ctx, uuid.New(), []string{"q"}, time.Minute)
	assert.ErrorIs(t, err, queue.ErrNoTaskToClaim)
}

func TestMemoryStorageCompleteTask(t *testing.T) {
	t.Parallel()

	repo := queue.NewMemoryStorage()
	defer repo.Close()
	ctx := context.Background()

	task := newTask("q", 3, time.Now().Add(-time.Minute))
	require.NoError(t, repo.CreateTask(ctx, task))

	claimed, err := repo.ClaimTask(ctx, uuid.New(), []string{"q"}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.CompleteTask(ctx, claimed.ID))

	// Completing twice fails: the task left processing.
	assert.Error(t, repo.CompleteTask(ctx, claimed.ID))
}

func TestMemoryStorageFailTaskWithRetriesLeft(t *testing.T) {
	t.Parallel()

	repo := queue.NewMemoryStorage()
	defer repo.Close()
	ctx := context.Background()

	task := newTask("q", 2, time.Now().Add(-time.Minute))
	require.NoError(t, repo.CreateTask(ctx, task))

	claimed, err := repo.ClaimTask(ctx, uuid.New(), []string{"q"}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.FailTask(ctx, claimed.ID, "boom"))

	// Back to pending but scheduled in the future, so not claimable yet.
	_, err = repo.ClaimTask(ctx, uuid.New(), []string{"q"}, time.Minute)
	assert.ErrorIs(t, err, queue.ErrNoTaskToClaim, "backoff delays the retry")
}

func TestMemoryStorageFailTaskWithoutRetriesExhausts(t *testing.T) {
	t.Parallel()

	repo := queue.NewMemoryStorage()
	defer repo.Close()
	ctx := context.Background()

	task := newTask("q", 0, time.Now().Add(-time.Minute))
	require.NoError(t, repo.CreateTask(ctx, task))

	claimed, err := repo.ClaimTask(ctx, uuid.New(), []string{"q"}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.FailTask(ctx, claimed.ID, "boom"))

	// Failed, not pending: the first failure exhausts a zero-retry task.
	_, err = repo.ClaimTask(ctx, uuid.New(), []string{"q"}, time.Minute)
	assert.ErrorIs(t, err, queue.ErrNoTaskToClaim)

	require.NoError(t, repo.MoveToDLQ(ctx, claimed.ID))
	dead := repo.DeadLetters()
	require.Len(t, dead, 1)
	assert.Equal(t, claimed.ID, dead[0].TaskID)
	assert.Equal(t, "boom", dead[0].Error)
	assert.EqualValues(t, 1, dead[0].RetryCount)
}

func TestMemoryStorageMoveToDLQRemovesTask(t *testing.T) {
	t.Parallel()

	repo := queue.NewMemoryStorage()
	defer repo.Close()
	ctx := context.Background()

	task := newTask("q", 0, time.Now().Add(-time.Minute))
	require.NoError(t, repo.CreateTask(ctx, task))
	require.NoError(t, repo.MoveToDLQ(ctx, task.ID))

	assert.ErrorIs(t, repo.MoveToDLQ(ctx, task.ID), queue.ErrTaskNotFound)
}

func TestMemoryStorageDuplicateCreateRejected(t *testing.T) {
	t.Parallel()

	repo := queue.NewMemoryStorage()
	defer repo.Close()
	ctx := context.Background()

	task := newTask("q", 0, time.Now())
	require.NoError(t, repo.CreateTask(ctx, task))
	assert.Error(t, repo.CreateTask(ctx, task))
}
