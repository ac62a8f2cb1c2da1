package httpapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/taskmaster/internal/crypto"
	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/limiter"
	"github.com/and161185/taskmaster/internal/model"
)

const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"

	resetTTL  = time.Hour
	verifyTTL = 48 * time.Hour
)

// MailKind names the purpose of an outgoing account mail.
type MailKind string

const (
	MailPasswordReset     MailKind = "password-reset"
	MailEmailVerification MailKind = "email-verification"
)

// Mailer delivers one-time account tokens to their owner.
type Mailer interface {
	Send(ctx context.Context, kind MailKind, email, token string) error
}

type discardMailer struct{}

func (discardMailer) Send(context.Context, MailKind, string, string) error { return nil }

// LogMailer writes mails to the log; for local development only.
type LogMailer struct{ Log *zap.Logger }

// Send logs the mail.
func (m LogMailer) Send(_ context.Context, kind MailKind, email, token string) error {
	m.Log.Info("mail", zap.String("kind", string(kind)), zap.String("to", email), zap.String("token", token))
	return nil
}

// claims are the access and refresh token claims.
type claims = jwt.RegisteredClaims

// Accounts implements registration, login with lockout, token issue and account recovery.
type Accounts struct {
	st         *state
	hasher     *pkgcrypto.Hasher
	signKey    []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	lim        limiter.Limiter
	mail       Mailer
	log        *zap.Logger
	now        func() time.Time
}

// Register creates a new account and signs it in.
func (a *Accounts) Register(ctx context.Context, u model.User, password string) (model.User, model.Tokens, error) {
	uid, err := uuid.NewV4()
	if err != nil {
		return model.User{}, model.Tokens{}, err
	}
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return model.User{}, model.Tokens{}, fmt.Errorf("hash password: %w", err)
	}
	now := a.stamp()
	u.UserID = uid.String()
	u.CreatedAt, u.UpdatedAt = now, now
	if err := a.st.addAccount(&account{user: u, hash: hash}); err != nil {
		return model.User{}, model.Tokens{}, err
	}

	tok, err := uuid.NewV4()
	if err != nil {
		return model.User{}, model.Tokens{}, err
	}
	a.st.putOneTime(a.st.verifies, tok.String(), oneTime{userID: u.UserID, expiresAt: now.Add(verifyTTL)})
	if err := a.mail.Send(ctx, MailEmailVerification, u.Email, tok.String()); err != nil {
		a.log.Warn("send verification mail", zap.Error(err))
	}

	tokens, err := a.issue(u.UserID)
	return u, tokens, err
}

// LoginWithIP authenticates with rate limiting by (email, ip).
func (a *Accounts) LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error) {
	ipHash := limiter.HashIP(ip)
	key := emailKey(email)

	allowed, _, err := a.lim.Allow(ctx, key, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, hash, err := a.st.accountByEmail(email)
	if err == nil {
		var ok bool
		ok, err = pkgcrypto.Verify(password, hash)
		if err == nil && !ok {
			err = errs.ErrUnauthorized
		}
	}
	if err != nil {
		if blocked, _, ferr := a.lim.Failure(ctx, key, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// unknown account and wrong password look the same
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	if err := a.lim.Success(ctx, key, ipHash); err != nil {
		a.log.Warn("limiter reset", zap.Error(err))
	}

	tokens, err := a.issue(u.UserID)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return tokens, u, nil
}

// Authenticate verifies an access token and returns its subject and claims.
func (a *Accounts) Authenticate(token string) (uuid.UUID, *claims, error) {
	c, err := a.parse(token, audienceAccess)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if a.st.isRevoked(c.ID) {
		return uuid.Nil, nil, errs.ErrUnauthorized
	}
	uid, err := uuid.FromString(c.Subject)
	if err != nil {
		return uuid.Nil, nil, errs.ErrUnauthorized
	}
	if _, _, err := a.st.user(uid.String()); err != nil {
		return uuid.Nil, nil, errs.ErrUnauthorized
	}
	return uid, c, nil
}

// Refresh exchanges a live refresh token for a new access token.
func (a *Accounts) Refresh(refresh string) (string, error) {
	c, err := a.parse(refresh, audienceRefresh)
	if err != nil {
		return "", err
	}
	if !a.st.hasRefresh(c.Subject, c.ID) {
		return "", errs.ErrUnauthorized
	}
	access, _, err := a.sign(c.Subject, audienceAccess, a.accessTTL)
	return access, err
}

// Logout revokes the presented access token and all refresh tokens of the user.
func (a *Accounts) Logout(userID string, c *claims) {
	exp := a.now().Add(a.accessTTL)
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	a.st.endSession(userID, c.ID, exp)
}

// ChangePassword replaces the password after checking the current one.
func (a *Accounts) ChangePassword(userID, current, next string) error {
	_, hash, err := a.st.user(userID)
	if err != nil {
		return err
	}
	ok, err := pkgcrypto.Verify(current, hash)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrUnauthorized
	}
	return a.setPassword(userID, next)
}

// ForgotPassword mails a reset token if the account exists; it never reveals whether it does.
func (a *Accounts) ForgotPassword(ctx context.Context, email string) error {
	u, _, err := a.st.accountByEmail(email)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	tok, err := uuid.NewV4()
	if err != nil {
		return err
	}
	a.st.putOneTime(a.st.resets, tok.String(), oneTime{userID: u.UserID, expiresAt: a.now().Add(resetTTL)})
	return a.mail.Send(ctx, MailPasswordReset, u.Email, tok.String())
}

// ResetPassword consumes a reset token and sets a new password.
func (a *Accounts) ResetPassword(token, next string) error {
	userID, err := a.st.takeOneTime(a.st.resets, token, a.now())
	if err != nil {
		return err
	}
	return a.setPassword(userID, next)
}

// VerifyEmail consumes a verification token.
func (a *Accounts) VerifyEmail(token string) error {
	userID, err := a.st.takeOneTime(a.st.verifies, token, a.now())
	if err != nil {
		return err
	}
	return a.st.markVerified(userID)
}

func (a *Accounts) setPassword(userID, password string) error {
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return a.st.setHash(userID, hash)
}

// issue creates an access/refresh pair and registers the refresh token.
func (a *Accounts) issue(userID string) (model.Tokens, error) {
	access, exp, err := a.sign(userID, audienceAccess, a.accessTTL)
	if err != nil {
		return model.Tokens{}, err
	}
	refresh, rc, err := a.signClaims(userID, audienceRefresh, a.refreshTTL)
	if err != nil {
		return model.Tokens{}, err
	}
	a.st.addRefresh(userID, rc.ID, rc.ExpiresAt.Time)
	return model.Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func (a *Accounts) sign(subject, audience string, ttl time.Duration) (string, time.Time, error) {
	s, c, err := a.signClaims(subject, audience, ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, c.ExpiresAt.Time, nil
}

// signClaims creates a signed HS256 JWT for the given subject.
func (a *Accounts) signClaims(subject, audience string, ttl time.Duration) (string, *claims, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", nil, err
	}
	now := a.now()
	c := &claims{
		ID:        jti.String(),
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.signKey)
	return signed, c, err
}

func (a *Accounts) parse(token, audience string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return a.signKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, errs.ErrUnauthorized
	}
	return &c, nil
}

// stamp is now at the millisecond precision of the wire format.
func (a *Accounts) stamp() time.Time { return a.now().UTC().Truncate(time.Millisecond) }
