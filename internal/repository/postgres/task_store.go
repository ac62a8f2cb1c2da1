package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
	"github.com/and161185/taskmaster/internal/repository/watch"
)

// TaskStore implements repository.TaskStore using PostgreSQL.
type TaskStore struct {
	db  *DB
	hub watch.Hub
}

// NewTaskStore constructs a task store.
func NewTaskStore(db *DB) *TaskStore { return &TaskStore{db: db} }

const taskColumns = `task_id, user_id, title, description, due_date, is_completed, priority, status, category, created_at, updated_at`

// Upsert inserts the task or replaces the row with the same task_id.
func (s *TaskStore) Upsert(ctx context.Context, t model.Task) error {
	const q = `
INSERT INTO tasks (` + taskColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (task_id) DO UPDATE SET
  user_id=EXCLUDED.user_id, title=EXCLUDED.title, description=EXCLUDED.description,
  due_date=EXCLUDED.due_date, is_completed=EXCLUDED.is_completed, priority=EXCLUDED.priority,
  status=EXCLUDED.status, category=EXCLUDED.category,
  created_at=EXCLUDED.created_at, updated_at=EXCLUDED.updated_at`
	_, err := s.db.Pool.Exec(ctx, q,
		t.TaskID, t.UserID, t.Title, t.Description, t.DueDate, t.IsCompleted,
		string(t.Priority), string(t.Status), string(t.Category), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert task %d: %w", t.TaskID, err)
	}
	s.hub.Notify()
	return nil
}

// Delete removes the task with the given id.
func (s *TaskStore) Delete(ctx context.Context, taskID int64) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM tasks WHERE task_id=$1`, taskID)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", taskID, err)
	}
	if tag.RowsAffected() > 0 {
		s.hub.Notify()
	}
	return nil
}

// TasksForUser returns the user's tasks by due date, nulls last.
func (s *TaskStore) TasksForUser(ctx context.Context, userID string) ([]model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE user_id=$1 ORDER BY due_date ASC NULLS LAST, task_id ASC`
	rows, err := s.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TaskByID returns a single cached task.
func (s *TaskStore) TaskByID(ctx context.Context, taskID int64) (model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE task_id=$1`
	t, err := scanTask(s.db.Pool.QueryRow(ctx, q, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Task{}, errs.ErrNotFound
		}
		return model.Task{}, err
	}
	return t, nil
}

// Subscribe notifies after every mutation made through this store.
func (s *TaskStore) Subscribe() (<-chan struct{}, func()) { return s.hub.Subscribe() }

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t                          model.Task
		due                        *time.Time
		priority, status, category string
	)
	err := row.Scan(&t.TaskID, &t.UserID, &t.Title, &t.Description, &due, &t.IsCompleted,
		&priority, &status, &category, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Task{}, err
	}
	t.DueDate = due
	t.Priority = model.Priority(priority)
	t.Status = model.Status(status)
	t.Category = model.Category(category)
	return t, nil
}
