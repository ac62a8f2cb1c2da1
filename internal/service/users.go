package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/taskmaster/internal/convert"
	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
	"github.com/and161185/taskmaster/internal/repository"
	"github.com/and161185/taskmaster/internal/result"
	"github.com/and161185/taskmaster/internal/session"
	"github.com/and161185/taskmaster/internal/validate"
)

// UserService reads and edits the signed-in user's profile.
type UserService interface {
	Profile(ctx context.Context) result.Result[model.User]
	UpdateProfile(ctx context.Context, upd model.ProfileUpdate) result.Result[model.User]
	DeleteAccount(ctx context.Context) result.Result[struct{}]
	Wait()
}

// UserServiceImpl implements UserService.
type UserServiceImpl struct {
	remote UserRemote
	users  repository.UserStore
	tokens session.TokenStore
	log    *zap.Logger

	inflight sync.WaitGroup
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService constructs UserService with required dependencies.
func NewUserService(remote UserRemote, users repository.UserStore, tokens session.TokenStore, log *zap.Logger) *UserServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserServiceImpl{remote: remote, users: users, tokens: tokens, log: log}
}

// Profile fetches the profile from the server without caching it.
func (s *UserServiceImpl) Profile(ctx context.Context) result.Result[model.User] {
	env, err := s.remote.Profile(ctx)
	data, e := unwrap(env, err, msgProfile)
	if e != nil {
		return result.Failure[model.User](e)
	}
	if data == nil {
		return result.Failure[model.User](errs.EmptyPayload())
	}
	return result.Success(convert.FromAPIUser(*data))
}

// UpdateProfile changes profile fields and refreshes the current-user slot with the server copy.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) result.Result[model.User] {
	if upd == (model.ProfileUpdate{}) {
		return result.Failure[model.User](errs.Validation("nothing to update"))
	}
	if err := validate.Struct(upd); err != nil {
		return result.Failure[model.User](err)
	}
	req := convert.ToAPIProfileUpdate(upd)
	return detached(ctx, &s.inflight, func(ctx context.Context) result.Result[model.User] {
		env, err := s.remote.UpdateProfile(ctx, req)
		data, e := unwrap(env, err, msgUpdateProfile)
		if e != nil {
			return result.Failure[model.User](e)
		}
		if data == nil {
			return result.Failure[model.User](errs.EmptyPayload())
		}
		u := convert.FromAPIUser(*data)
		if err := s.users.SetCurrent(ctx, u); err != nil {
			s.log.Warn("cache updated profile", zap.String("user_id", u.UserID), zap.Error(err))
		}
		return result.Success(u)
	})
}

// DeleteAccount deletes the account and, once confirmed, drops the local session.
func (s *UserServiceImpl) DeleteAccount(ctx context.Context) result.Result[struct{}] {
	return detached(ctx, &s.inflight, func(ctx context.Context) result.Result[struct{}] {
		env, err := s.remote.DeleteProfile(ctx)
		if e := confirm(env, err, msgDeleteProfile); e != nil {
			return result.Failure[struct{}](e)
		}
		if err := endSession(ctx, s.users, s.tokens); err != nil {
			s.log.Warn("clear session after account deletion", zap.Error(err))
			return result.Failure[struct{}](errs.Storage(err))
		}
		return result.Success(struct{}{})
	})
}

// Wait blocks until in-flight writes finish.
func (s *UserServiceImpl) Wait() { s.inflight.Wait() }
