// Package sqlite contains the gorm/SQLite implementation of the local store.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
	"github.com/and161185/taskmaster/internal/repository/watch"
)

// Open opens (creating if needed) the SQLite database at path and migrates the schema.
// Use ":memory:" for a throwaway store.
func Open(path string) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// one connection: SQLite has a single writer and ":memory:" is per connection
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&taskRow{}, &userRow{}); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// TaskStore implements repository.TaskStore.
type TaskStore struct {
	db  *gorm.DB
	hub watch.Hub
}

// NewTaskStore constructs a task store over a migrated db.
func NewTaskStore(db *gorm.DB) *TaskStore { return &TaskStore{db: db} }

// Upsert inserts the task or replaces every column of the row with the same id.
func (s *TaskStore) Upsert(ctx context.Context, t model.Task) error {
	row := toTaskRow(t)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert task: %w", err)
	}
	s.hub.Notify()
	return nil
}

// Delete removes the task by id.
func (s *TaskStore) Delete(ctx context.Context, taskID int64) error {
	res := s.db.WithContext(ctx).Delete(&taskRow{}, "task_id = ?", taskID)
	if err := res.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if res.RowsAffected > 0 {
		s.hub.Notify()
	}
	return nil
}

// TasksForUser returns the user's tasks by due date ascending, nulls last.
func (s *TaskStore) TasksForUser(ctx context.Context, userID string) ([]model.Task, error) {
	var rows []taskRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("due_date IS NULL, due_date ASC, task_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	out := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// TaskByID returns one cached task.
func (s *TaskStore) TaskByID(ctx context.Context, taskID int64) (model.Task, error) {
	var row taskRow
	if err := s.db.WithContext(ctx).First(&row, "task_id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Task{}, errs.ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to find task: %w", err)
	}
	return row.toModel(), nil
}

// Subscribe notifies after every mutation.
func (s *TaskStore) Subscribe() (<-chan struct{}, func()) { return s.hub.Subscribe() }

// UserStore implements repository.UserStore.
type UserStore struct {
	db  *gorm.DB
	hub watch.Hub
}

// NewUserStore constructs a user store over a migrated db.
func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

// SetCurrent replaces the current user in one transaction.
func (s *UserStore) SetCurrent(ctx context.Context, u model.User) error {
	row := toUserRow(u)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&userRow{}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("failed to set current user: %w", err)
	}
	s.hub.Notify()
	return nil
}

// Current returns the current user.
func (s *UserStore) Current(ctx context.Context) (model.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to load current user: %w", err)
	}
	return row.toModel(), nil
}

// ClearCurrent removes the current user.
func (s *UserStore) ClearCurrent(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&userRow{}).Error; err != nil {
		return fmt.Errorf("failed to clear current user: %w", err)
	}
	s.hub.Notify()
	return nil
}

// Subscribe notifies after every change of the slot.
func (s *UserStore) Subscribe() (<-chan struct{}, func()) { return s.hub.Subscribe() }
