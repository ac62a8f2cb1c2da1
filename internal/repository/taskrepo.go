// Package repository defines the local store interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/taskmaster/internal/model"
)

// TaskStore is the device-local cache of tasks.
type TaskStore interface {
	// Upsert inserts the task or replaces the row with the same TaskID.
	Upsert(ctx context.Context, t model.Task) error

	// Delete removes the row with the given id; a missing row is not an error.
	Delete(ctx context.Context, taskID int64) error

	// TasksForUser returns the user's tasks by due date ascending (nulls last), then by id.
	TasksForUser(ctx context.Context, userID string) ([]model.Task, error)

	// TaskByID returns a single task or errs.ErrNotFound.
	TaskByID(ctx context.Context, taskID int64) (model.Task, error)

	// Subscribe returns a channel that receives a signal after every mutation,
	// and a func releasing the subscription.
	Subscribe() (<-chan struct{}, func())
}
