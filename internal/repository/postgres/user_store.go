package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
	"github.com/and161185/taskmaster/internal/repository/watch"
)

// UserStore implements repository.UserStore using PostgreSQL.
type UserStore struct {
	db  *DB
	hub watch.Hub
}

// NewUserStore constructs a user store.
func NewUserStore(db *DB) *UserStore { return &UserStore{db: db} }

// SetCurrent replaces the current user row in one transaction.
func (s *UserStore) SetCurrent(ctx context.Context, u model.User) error {
	const del = `DELETE FROM users`
	const ins = `
INSERT INTO users (user_id, username, email, first_name, last_name, profile_picture_url, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	err := s.db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, del); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, ins, u.UserID, u.Username, u.Email, u.FirstName, u.LastName,
			u.ProfilePictureURL, u.CreatedAt, u.UpdatedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("set current user: %w", err)
	}
	s.hub.Notify()
	return nil
}

// Current returns the current user.
func (s *UserStore) Current(ctx context.Context) (model.User, error) {
	const q = `
SELECT user_id, username, email, first_name, last_name, profile_picture_url, created_at, updated_at
FROM users LIMIT 1`
	var u model.User
	err := s.db.Pool.QueryRow(ctx, q).Scan(&u.UserID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.ProfilePictureURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

// ClearCurrent deletes the current user row.
func (s *UserStore) ClearCurrent(ctx context.Context) error {
	if _, err := s.db.Pool.Exec(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("clear current user: %w", err)
	}
	s.hub.Notify()
	return nil
}

// Subscribe notifies after every change of the slot.
func (s *UserStore) Subscribe() (<-chan struct{}, func()) { return s.hub.Subscribe() }
