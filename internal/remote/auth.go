package remote

import (
	"context"
	"net/http"

	"github.com/and161185/taskmaster/internal/api"
)

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (api.Envelope[api.User], error) {
	return call[api.User](ctx, c, http.MethodPost, []string{api.PathLogin}, nil, req)
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (api.Envelope[api.User], error) {
	return call[api.User](ctx, c, http.MethodPost, []string{api.PathRegister}, nil, req)
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (api.Envelope[string], error) {
	return call[string](ctx, c, http.MethodPost, []string{api.PathRefresh}, nil, api.RefreshTokenRequest{RefreshToken: refreshToken})
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) (api.Envelope[api.Unit], error) {
	return call[api.Unit](ctx, c, http.MethodPost, []string{api.PathLogout}, nil, nil)
}

// ForgotPassword asks the server to send a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) (api.Envelope[api.Unit], error) {
	return call[api.Unit](ctx, c, http.MethodPost, []string{api.PathForgotPassword}, nil, map[string]string{"email": email})
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (api.Envelope[api.Unit], error) {
	body := map[string]string{"token": token, "newPassword": newPassword}
	return call[api.Unit](ctx, c, http.MethodPost, []string{api.PathResetPassword}, nil, body)
}

// ChangePassword changes the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, current, newPassword string) (api.Envelope[api.Unit], error) {
	body := map[string]string{"currentPassword": current, "newPassword": newPassword}
	return call[api.Unit](ctx, c, http.MethodPost, []string{api.PathChangePassword}, nil, body)
}

// VerifyEmail confirms an email address.
func (c *Client) VerifyEmail(ctx context.Context, token string) (api.Envelope[api.Unit], error) {
	return call[api.Unit](ctx, c, http.MethodPost, []string{api.PathVerifyEmail}, nil, map[string]string{"token": token})
}

// Profile returns the signed-in user.
func (c *Client) Profile(ctx context.Context) (api.Envelope[api.User], error) {
	return call[api.User](ctx, c, http.MethodGet, []string{api.PathProfile}, nil, nil)
}

// UpdateProfile changes profile fields.
func (c *Client) UpdateProfile(ctx context.Context, req api.ProfileUpdate) (api.Envelope[api.User], error) {
	return call[api.User](ctx, c, http.MethodPut, []string{api.PathProfile}, nil, req)
}

// DeleteProfile deletes the signed-in account.
func (c *Client) DeleteProfile(ctx context.Context) (api.Envelope[api.Unit], error) {
	return call[api.Unit](ctx, c, http.MethodDelete, []string{api.PathProfile}, nil, nil)
}
