package repository

import (
	"context"

	"github.com/and161185/taskmaster/internal/model"
)

// UserStore holds the single "current user" row of the device.
type UserStore interface {
	// SetCurrent replaces the current user.
	SetCurrent(ctx context.Context, u model.User) error
	// Current returns the current user or errs.ErrNotFound.
	Current(ctx context.Context) (model.User, error)
	// ClearCurrent empties the slot. Clearing an empty slot is not an error.
	ClearCurrent(ctx context.Context) error
	// Subscribe notifies after each change of the slot.
	Subscribe() (<-chan struct{}, func())
}
