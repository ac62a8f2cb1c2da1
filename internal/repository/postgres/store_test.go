package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
	"github.com/and161185/taskmaster/internal/repository"
)

var (
	_ repository.TaskStore = (*TaskStore)(nil)
	_ repository.UserStore = (*UserStore)(nil)
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func anyArgs(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = pgxmock.AnyArg()
	}
	return out
}

var taskCols = []string{"task_id", "user_id", "title", "description", "due_date", "is_completed",
	"priority", "status", "category", "created_at", "updated_at"}

func TestTaskStore_Upsert_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := NewTaskStore(db)
	ch, cancel := s.Subscribe()
	defer cancel()

	ts := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	due := ts.Add(48 * time.Hour)
	tk := model.Task{
		TaskID: 7, UserID: "u1", Title: "Buy milk", DueDate: &due,
		Priority: model.PriorityHigh, Status: model.StatusPending, Category: model.CategoryPersonal,
		CreatedAt: ts, UpdatedAt: ts,
	}

	mock.ExpectExec(`(?s)INSERT INTO tasks .*ON CONFLICT \(task_id\) DO UPDATE SET`).
		WithArgs(int64(7), "u1", "Buy milk", "", &due, false, "HIGH", "PENDING", "PERSONAL", ts, ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Upsert(context.Background(), tk))
	require.NoError(t, mock.ExpectationsWereMet())

	select {
	case <-ch:
	default:
		t.Fatal("expected change notification")
	}
}

func TestTaskStore_Upsert_ErrorDoesNotNotify(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := NewTaskStore(db)
	ch, cancel := s.Subscribe()
	defer cancel()

	mock.ExpectExec(`INSERT INTO tasks`).
		WithArgs(anyArgs(11)...).
		WillReturnError(errors.New("boom"))

	err := s.Upsert(context.Background(), model.Task{TaskID: 1, UserID: "u1", Title: "abc"})
	require.ErrorContains(t, err, "boom")

	select {
	case <-ch:
		t.Fatal("failed write must not notify")
	default:
	}
}

func TestTaskStore_Delete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := NewTaskStore(db)

	mock.ExpectExec(`DELETE FROM tasks WHERE task_id=\$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, s.Delete(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStore_TasksForUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := NewTaskStore(db)

	ts := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	due := ts.Add(time.Hour)
	mock.ExpectQuery(`SELECT .* FROM tasks WHERE user_id=\$1 ORDER BY due_date ASC NULLS LAST, task_id ASC`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(taskCols).
			AddRow(int64(2), "u1", "first", "d", &due, false, "LOW", "IN_PROGRESS", "WORK", ts, ts).
			AddRow(int64(1), "u1", "second", "", nil, true, "URGENT", "COMPLETED", "OTHER", ts, ts))

	got, err := s.TasksForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(2), got[0].TaskID)
	require.NotNil(t, got[0].DueDate)
	require.True(t, due.Equal(*got[0].DueDate))
	require.Equal(t, model.StatusInProgress, got[0].Status)
	require.Equal(t, model.CategoryWork, got[0].Category)
	require.Nil(t, got[1].DueDate)
	require.True(t, got[1].IsCompleted)
	require.Equal(t, model.PriorityUrgent, got[1].Priority)
}

func TestTaskStore_TasksForUser_Empty(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := NewTaskStore(db)

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE user_id=\$1`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(taskCols))

	got, err := s.TasksForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestTaskStore_TaskByID_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := NewTaskStore(db)

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE task_id=\$1`).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.TaskByID(context.Background(), 9)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserStore_SetCurrent_ReplacesInTx(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := NewUserStore(db)

	ts := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	u := model.User{UserID: "u1", Username: "alice", Email: "a@b.com", CreatedAt: ts, UpdatedAt: ts}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM users`).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("u1", "alice", "a@b.com", "", "", "", ts, ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, s.SetCurrent(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_SetCurrent_RollsBack(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := NewUserStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM users`).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(anyArgs(8)...).
		WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := s.SetCurrent(context.Background(), model.User{UserID: "u1"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_CurrentAndClear(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := NewUserStore(db)
	ctx := context.Background()

	ts := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM users LIMIT 1`).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "username", "email", "first_name", "last_name",
			"profile_picture_url", "created_at", "updated_at"}).
			AddRow("u1", "alice", "a@b.com", "Alice", "", "", ts, ts))
	mock.ExpectExec(`DELETE FROM users`).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(`SELECT .* FROM users LIMIT 1`).WillReturnError(pgx.ErrNoRows)

	u, err := s.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, "Alice", u.FirstName)

	require.NoError(t, s.ClearCurrent(ctx))

	_, err = s.Current(ctx)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
