package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/taskmaster/internal/api"
	"github.com/and161185/taskmaster/internal/convert"
	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
	"github.com/and161185/taskmaster/internal/repository"
	"github.com/and161185/taskmaster/internal/repository/watch"
	"github.com/and161185/taskmaster/internal/result"
	"github.com/and161185/taskmaster/internal/session"
	"github.com/and161185/taskmaster/internal/validate"
)

// AuthService defines sign-in, sign-out and account recovery operations.
type AuthService interface {
	// Login authenticates and makes the returned user the current user.
	Login(ctx context.Context, email, password string) result.Result[model.User]
	// Register creates an account and signs it in.
	Register(ctx context.Context, reg model.Registration) result.Result[model.User]
	// Logout ends the session. Local session state is cleared even when the server call fails.
	Logout(ctx context.Context) result.Result[struct{}]
	// RefreshToken exchanges the stored refresh token for a new access token.
	RefreshToken(ctx context.Context) result.Result[string]
	ForgotPassword(ctx context.Context, email string) result.Result[struct{}]
	ResetPassword(ctx context.Context, token, newPassword string) result.Result[struct{}]
	ChangePassword(ctx context.Context, current, newPassword string) result.Result[struct{}]
	VerifyEmail(ctx context.Context, token string) result.Result[struct{}]

	// IsLoggedIn streams whether the current-user slot is populated.
	IsLoggedIn(ctx context.Context) <-chan result.Result[bool]
	// CurrentUser returns the cached current user.
	CurrentUser(ctx context.Context) result.Result[model.User]
	// Session returns ctx carrying the current user's id.
	Session(ctx context.Context) (context.Context, error)

	Wait()
}

// AuthServiceImpl implements AuthService.
type AuthServiceImpl struct {
	remote AuthRemote
	users  repository.UserStore
	tokens session.TokenStore
	log    *zap.Logger

	inflight sync.WaitGroup
}

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(remote AuthRemote, users repository.UserStore, tokens session.TokenStore, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{remote: remote, users: users, tokens: tokens, log: log}
}

// Login authenticates with email and password.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) result.Result[model.User] {
	email = strings.TrimSpace(email)
	if err := validate.Credentials(email, password); err != nil {
		return result.Failure[model.User](err)
	}
	req := api.LoginRequest{Email: email, Password: password}
	return detached(ctx, &s.inflight, func(ctx context.Context) result.Result[model.User] {
		env, err := s.remote.Login(ctx, req)
		return s.signIn(ctx, env, err, msgLogin)
	})
}

// Register creates an account and signs it in.
func (s *AuthServiceImpl) Register(ctx context.Context, reg model.Registration) result.Result[model.User] {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Username = strings.TrimSpace(reg.Username)
	if err := validate.Struct(reg); err != nil {
		return result.Failure[model.User](err)
	}
	req := convert.ToRegisterRequest(reg)
	return detached(ctx, &s.inflight, func(ctx context.Context) result.Result[model.User] {
		env, err := s.remote.Register(ctx, req)
		return s.signIn(ctx, env, err, msgRegister)
	})
}

// signIn stores the user in the current-user slot and keeps the tokens.
// Unlike task writes, a failing slot write fails the call: without it there is no local session.
func (s *AuthServiceImpl) signIn(ctx context.Context, env api.Envelope[api.User], err error, fallback string) result.Result[model.User] {
	data, e := unwrap(env, err, fallback)
	if e != nil {
		return result.Failure[model.User](e)
	}
	if data == nil {
		return result.Failure[model.User](errs.EmptyPayload())
	}
	sess := convert.FromAPISession(*data)
	if sess.AccessToken != "" {
		t := model.Tokens{
			AccessToken:  sess.AccessToken,
			RefreshToken: sess.RefreshToken,
			ExpiresAt:    session.ExpiryFromJWT(sess.AccessToken),
		}
		if err := s.tokens.Save(t); err != nil {
			return result.Failure[model.User](errs.Storage(err))
		}
	}
	if err := s.users.SetCurrent(ctx, sess.User); err != nil {
		return result.Failure[model.User](errs.Storage(err))
	}
	s.log.Info("signed in", zap.String("user_id", sess.User.UserID))
	return result.Success(sess.User)
}

// Logout calls the server, then clears the current user and tokens regardless of the outcome.
// A context that is already done skips the server call but still clears local state; a caller
// that goes away mid-call leaves the clearing to the detached call. Failing to clear local state
// is reported as a storage error and wins over the server's answer.
func (s *AuthServiceImpl) Logout(ctx context.Context) result.Result[struct{}] {
	if err := ctx.Err(); err != nil {
		if err := endSession(context.WithoutCancel(ctx), s.users, s.tokens); err != nil {
			s.log.Warn("clear session on logout", zap.Error(err))
			return result.Failure[struct{}](errs.Storage(err))
		}
		return result.Failure[struct{}](errs.Transport(err))
	}
	return detached(ctx, &s.inflight, func(ctx context.Context) result.Result[struct{}] {
		env, err := s.remote.Logout(ctx)
		remoteErr := confirm(env, err, msgLogout)

		if err := endSession(ctx, s.users, s.tokens); err != nil {
			s.log.Warn("clear session on logout", zap.Error(err))
			return result.Failure[struct{}](errs.Storage(err))
		}
		if remoteErr != nil {
			return result.Failure[struct{}](remoteErr)
		}
		return result.Success(struct{}{})
	})
}

// endSession drops the current-user slot and the stored tokens, attempting both.
func endSession(ctx context.Context, users repository.UserStore, tokens session.TokenStore) error {
	return errors.Join(users.ClearCurrent(ctx), tokens.Clear())
}

// RefreshToken swaps the stored refresh token for a new access token.
func (s *AuthServiceImpl) RefreshToken(ctx context.Context) result.Result[string] {
	refresh := s.tokens.RefreshToken()
	if refresh == "" {
		return result.Failure[string](errs.NoSession())
	}
	return detached(ctx, &s.inflight, func(ctx context.Context) result.Result[string] {
		env, err := s.remote.Refresh(ctx, refresh)
		data, e := unwrap(env, err, msgRefresh)
		if e != nil {
			return result.Failure[string](e)
		}
		if data == nil || *data == "" {
			return result.Failure[string](errs.EmptyPayload())
		}
		t := model.Tokens{AccessToken: *data, RefreshToken: refresh, ExpiresAt: session.ExpiryFromJWT(*data)}
		if err := s.tokens.Save(t); err != nil {
			return result.Failure[string](errs.Storage(err))
		}
		return result.Success(*data)
	})
}

// ForgotPassword asks the server to email a reset link.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) result.Result[struct{}] {
	email = strings.TrimSpace(email)
	if err := validate.Email(email); err != nil {
		return result.Failure[struct{}](err)
	}
	env, err := s.remote.ForgotPassword(ctx, email)
	return done(confirm(env, err, msgForgot))
}

// ResetPassword sets a new password with a reset token.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) result.Result[struct{}] {
	if strings.TrimSpace(token) == "" {
		return result.Failure[struct{}](errs.Validation("reset token must not be empty"))
	}
	if err := validate.Password(newPassword); err != nil {
		return result.Failure[struct{}](err)
	}
	env, err := s.remote.ResetPassword(ctx, token, newPassword)
	return done(confirm(env, err, msgReset))
}

// ChangePassword changes the signed-in user's password.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, current, newPassword string) result.Result[struct{}] {
	if current == "" {
		return result.Failure[struct{}](errs.Validation("current password must not be empty"))
	}
	if err := validate.Password(newPassword); err != nil {
		return result.Failure[struct{}](err)
	}
	env, err := s.remote.ChangePassword(ctx, current, newPassword)
	return done(confirm(env, err, msgChangePass))
}

// VerifyEmail confirms an email address with a verification token.
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) result.Result[struct{}] {
	if strings.TrimSpace(token) == "" {
		return result.Failure[struct{}](errs.Validation("verification token must not be empty"))
	}
	env, err := s.remote.VerifyEmail(ctx, token)
	return done(confirm(env, err, msgVerifyEmail))
}

// IsLoggedIn streams the state of the current-user slot.
func (s *AuthServiceImpl) IsLoggedIn(ctx context.Context) <-chan result.Result[bool] {
	return watch.Observe(ctx, s.users.Subscribe, func(ctx context.Context) (bool, error) {
		_, err := s.users.Current(ctx)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, errs.ErrNotFound):
			return false, nil
		default:
			return false, err
		}
	})
}

// CurrentUser returns the cached current user, or a no-session error.
func (s *AuthServiceImpl) CurrentUser(ctx context.Context) result.Result[model.User] {
	u, err := s.users.Current(ctx)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return result.Failure[model.User](errs.NoSession())
		}
		return result.Failure[model.User](errs.Storage(err))
	}
	return result.Success(u)
}

// Session returns ctx scoped to the current user.
func (s *AuthServiceImpl) Session(ctx context.Context) (context.Context, error) {
	r := s.CurrentUser(ctx)
	u, ok := r.Value()
	if !ok {
		return ctx, r.Err()
	}
	return session.WithUserID(ctx, u.UserID), nil
}

// Wait blocks until in-flight writes finish.
func (s *AuthServiceImpl) Wait() { s.inflight.Wait() }

// done maps a confirmation to a unit result.
func done(e *errs.Error) result.Result[struct{}] {
	if e != nil {
		return result.Failure[struct{}](e)
	}
	return result.Success(struct{}{})
}
