package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/and161185/taskmaster/internal/api"
	"github.com/and161185/taskmaster/internal/convert"
	"github.com/and161185/taskmaster/internal/model"
)

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type resetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=100"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=100"`
}

func withTokens(u model.User, t model.Tokens) api.User {
	out := convert.ToAPIUser(u)
	out.AccessToken = t.AccessToken
	out.RefreshToken = t.RefreshToken
	return out
}

func (s *Server) login(c *gin.Context) {
	var req api.LoginRequest
	if !bind(c, &req) {
		return
	}
	tokens, u, err := s.acc.LoginWithIP(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		s.failErr(c, err)
		return
	}
	success(c, http.StatusOK, withTokens(u, tokens))
}

func (s *Server) register(c *gin.Context) {
	var req api.RegisterRequest
	if !bind(c, &req) {
		return
	}
	u := model.User{Username: req.Username, Email: req.Email}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	u, tokens, err := s.acc.Register(c.Request.Context(), u, req.Password)
	if err != nil {
		s.failErr(c, err)
		return
	}
	success(c, http.StatusCreated, withTokens(u, tokens))
}

func (s *Server) refresh(c *gin.Context) {
	var req api.RefreshTokenRequest
	if !bind(c, &req) {
		return
	}
	access, err := s.acc.Refresh(req.RefreshToken)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid refresh token", "unauthorized")
		return
	}
	success(c, http.StatusOK, access)
}

func (s *Server) logout(c *gin.Context) {
	if p, ok := principalOf(c); ok && p.Claims != nil {
		s.acc.Logout(p.ID.String(), p.Claims)
	}
	done(c, "Logged out")
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req emailRequest
	if !bind(c, &req) {
		return
	}
	if err := s.acc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		s.failErr(c, err)
		return
	}
	done(c, "If the account exists, a reset link has been sent")
}

func (s *Server) resetPassword(c *gin.Context) {
	var req resetRequest
	if !bind(c, &req) {
		return
	}
	if err := s.acc.ResetPassword(req.Token, req.NewPassword); err != nil {
		s.failErr(c, err)
		return
	}
	done(c, "Password has been reset")
}

func (s *Server) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := s.acc.ChangePassword(userID(c), req.CurrentPassword, req.NewPassword); err != nil {
		s.failErr(c, err)
		return
	}
	done(c, "Password changed")
}

func (s *Server) verifyEmail(c *gin.Context) {
	var req tokenRequest
	if !bind(c, &req) {
		return
	}
	if err := s.acc.VerifyEmail(req.Token); err != nil {
		s.failErr(c, err)
		return
	}
	done(c, "Email verified")
}

// ---- profile ----

func (s *Server) profile(c *gin.Context) {
	u, _, err := s.st.user(userID(c))
	if err != nil {
		s.failErr(c, err)
		return
	}
	success(c, http.StatusOK, convert.ToAPIUser(u))
}

func (s *Server) updateProfile(c *gin.Context) {
	var req api.ProfileUpdate
	if !bind(c, &req) {
		return
	}
	now := s.stamp()
	u, err := s.st.updateUser(userID(c), func(u *model.User) {
		if req.Username != nil {
			u.Username = *req.Username
		}
		if req.Email != nil {
			u.Email = *req.Email
		}
		if req.FirstName != nil {
			u.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			u.LastName = *req.LastName
		}
		if req.ProfilePictureURL != nil {
			u.ProfilePictureURL = *req.ProfilePictureURL
		}
		u.UpdatedAt = now
	})
	if err != nil {
		s.failErr(c, err)
		return
	}
	success(c, http.StatusOK, convert.ToAPIUser(u))
}

func (s *Server) deleteProfile(c *gin.Context) {
	if err := s.st.deleteAccount(userID(c)); err != nil {
		s.failErr(c, err)
		return
	}
	done(c, "Account deleted")
}
