package httpapi

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logging returns a middleware for structured request logging.
func Logging(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		// metadata only, never bodies
		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", c.ClientIP()),
		)
	}
}

// Recovery returns a middleware that turns panics into an internal-error envelope.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("route", c.FullPath()),
				)
				fail(c, http.StatusInternalServerError, "Internal server error", "internal")
			}
		}()
		c.Next()
	}
}

// requireAuth verifies "Authorization: Bearer <JWT>" and records the caller for later handlers.
func (s *Server) requireAuth(c *gin.Context) {
	tok, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		fail(c, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}
	uid, cl, err := s.acc.Authenticate(tok)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}
	setPrincipal(c, uid, cl)
	c.Next()
}

func bearerToken(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
		if t := strings.TrimSpace(v[7:]); t != "" {
			return t, true
		}
	}
	return "", false
}
