package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/google/uuid"
)

// PGStorage implements the enqueuer and worker repositories on PostgreSQL.
// Claims use FOR UPDATE SKIP LOCKED so concurrent workers never hand the
// same task to two handlers.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates a Postgres-backed queue storage. The tasks and
// tasks_dlq tables come from the migrations directory.
func NewPGStorage(pool *pgxpool.Pool) (*PGStorage, error) {
	if pool == nil {
		return nil, ErrRepositoryNil
	}
	return &PGStorage{pool: pool}, nil
}

// CreateTask implements EnqueuerRepository.
func (s *PGStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, queue, task_name, payload, status, retry_count, max_retries, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		task.ID, task.Queue, task.TaskName, task.Payload, task.Status,
		task.RetryCount, task.MaxRetries, task.ScheduledAt, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// ClaimTask implements WorkerRepository.
func (s *PGStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	lockUntil := time.Now().Add(lockDuration)

	row := s.pool.QueryRow(ctx, `
		UPDATE tasks SET status = $1, locked_until = $2, locked_by = $3
		WHERE id = (
			SELECT id FROM tasks
			WHERE status = $4 AND queue = ANY($5) AND scheduled_at <= now()
			ORDER BY scheduled_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, queue, task_name, payload, status, retry_count, max_retries,
			scheduled_at, locked_until, locked_by, processed_at, error, created_at`,
		TaskStatusProcessing, lockUntil, workerID, TaskStatusPending, queues,
	)

	var task Task
	err := row.Scan(&task.ID, &task.Queue, &task.TaskName, &task.Payload, &task.Status,
		&task.RetryCount, &task.MaxRetries, &task.ScheduledAt, &task.LockedUntil,
		&task.LockedBy, &task.ProcessedAt, &task.Error, &task.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoTaskToClaim
		}
		return nil, fmt.Errorf("failed to claim task: %w", err)
	}

	return &task, nil
}

// CompleteTask implements WorkerRepository.
func (s *PGStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks SET status = $1, processed_at = now(), locked_until = NULL, locked_by = NULL
		WHERE id = $2 AND status = $3`,
		TaskStatusCompleted, taskID, TaskStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// FailTask implements WorkerRepository.
func (s *PGStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks SET
			retry_count = retry_count + 1,
			error = $1,
			locked_until = NULL,
			locked_by = NULL,
			status = CASE WHEN retry_count + 1 > max_retries THEN $2::text ELSE $3::text END,
			scheduled_at = CASE WHEN retry_count + 1 > max_retries THEN scheduled_at
				ELSE now() + make_interval(secs => (retry_count + 1) * 30) END
		WHERE id = $4 AND status = $5`,
		errorMsg, TaskStatusFailed, TaskStatusPending, taskID, TaskStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to fail task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// MoveToDLQ implements WorkerRepository. The move is transactional so a
// task is never lost between the tasks table and the dead-letter table.
func (s *PGStorage) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO tasks_dlq (id, task_id, queue, task_name, payload, error, retry_count, failed_at, created_at)
		SELECT gen_random_uuid(), id, queue, task_name, payload, COALESCE(error, ''), retry_count, now(), now()
		FROM tasks WHERE id = $1`,
		taskID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert dead letter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return tx.Commit(ctx)
}

// ReleaseExpiredLocks resets processing tasks whose lock lapsed back to
// pending. The worker runs it on its lock-timeout ticker.
func (s *PGStorage) ReleaseExpiredLocks(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE tasks SET status = $1, locked_until = NULL, locked_by = NULL
		WHERE status = $2 AND locked_until < now()`,
		TaskStatusPending, TaskStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to release expired locks: %w", err)
	}
	return nil
}
