package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/and161185/taskmaster/internal/api"
	"github.com/and161185/taskmaster/internal/errs"
)

func success[T any](c *gin.Context, status int, v T) {
	c.JSON(status, api.Envelope[T]{Success: true, Data: &v})
}

func done(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, api.Envelope[api.Unit]{Success: true, Data: &api.Unit{}, Message: &msg})
}

// fail aborts with an error envelope.
func fail(c *gin.Context, status int, msg, code string) {
	c.AbortWithStatusJSON(status, api.Envelope[api.Unit]{Message: &msg, Error: &code})
}

func badRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, msg, "validation_error")
}

// bind decodes the JSON body and reports the first binding failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, bindMessage(err))
		return false
	}
	return true
}

func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "email":
			return "invalid email"
		case "min", "max":
			return fmt.Sprintf("%s has invalid length", field)
		default:
			return "invalid " + field
		}
	}
	return "invalid request body"
}

// failErr maps a domain error to its HTTP status.
func (s *Server) failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		fail(c, http.StatusNotFound, "Not found", "not_found")
	case errors.Is(err, errs.ErrUnauthorized):
		fail(c, http.StatusUnauthorized, "Invalid credentials", "unauthorized")
	case errors.Is(err, errs.ErrAlreadyExists):
		fail(c, http.StatusConflict, "Email or username already in use", "conflict")
	case errors.Is(err, errs.ErrRateLimited):
		fail(c, http.StatusTooManyRequests, "Too many failed attempts, try again later", "rate_limited")
	case errors.Is(err, errInvalidToken):
		fail(c, http.StatusBadRequest, "Invalid or expired token", "invalid_token")
	default:
		s.log.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error", "internal")
	}
}
