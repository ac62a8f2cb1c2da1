// Package httpapi is a reference implementation of the task service REST API.
// It keeps all state in memory and is meant for local development and integration tests.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/taskmaster/internal/crypto"
	"github.com/and161185/taskmaster/internal/limiter"
)

// Prefix is the path under which the API is served.
const Prefix = "/api/v1"

// Paging limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Config configures a Server. Only SignKey is required.
type Config struct {
	SignKey    []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Hash    pkgcrypto.Params // zero means pkgcrypto.DefaultParams
	Limiter limiter.Limiter  // nil means an in-memory limiter with the default policy
	Mailer  Mailer           // nil discards mails
	Logger  *zap.Logger
	Now     func() time.Time
}

// Server wires the in-memory state into gin handlers.
type Server struct {
	st     *state
	acc    *Accounts
	log    *zap.Logger
	now    func() time.Time
	engine *gin.Engine
}

// New constructs a server with its routes registered.
func New(cfg Config) (*Server, error) {
	if len(cfg.SignKey) == 0 {
		return nil, errors.New("httpapi: empty signing key")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	if cfg.Hash == (pkgcrypto.Params{}) {
		cfg.Hash = pkgcrypto.DefaultParams
	}
	if cfg.Limiter == nil {
		cfg.Limiter = limiter.NewMemory(limiter.DefaultPolicy)
	}
	if cfg.Mailer == nil {
		cfg.Mailer = discardMailer{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	st := newState()
	s := &Server{
		st:  st,
		log: cfg.Logger,
		now: cfg.Now,
		acc: &Accounts{
			st:         st,
			hasher:     pkgcrypto.NewHasher(cfg.Hash),
			signKey:    cfg.SignKey,
			accessTTL:  cfg.AccessTTL,
			refreshTTL: cfg.RefreshTTL,
			lim:        cfg.Limiter,
			mail:       cfg.Mailer,
			log:        cfg.Logger,
			now:        cfg.Now,
		},
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(Recovery(s.log), Logging(s.log))
	r.NoRoute(func(c *gin.Context) { fail(c, http.StatusNotFound, "Not found", "not_found") })
	r.NoMethod(func(c *gin.Context) { fail(c, http.StatusMethodNotAllowed, "Method not allowed", "method_not_allowed") })

	v1 := r.Group(Prefix)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", s.login)
		auth.POST("/register", s.register)
		auth.POST("/refresh", s.refresh)
		auth.POST("/forgot-password", s.forgotPassword)
		auth.POST("/reset-password", s.resetPassword)
		auth.POST("/verify-email", s.verifyEmail)
	}

	authed := v1.Group("", s.requireAuth)
	{
		authed.POST("/auth/logout", s.logout)
		authed.POST("/auth/change-password", s.changePassword)

		authed.GET("/user/profile", s.profile)
		authed.PUT("/user/profile", s.updateProfile)
		authed.DELETE("/user/profile", s.deleteProfile)
	}

	tasks := authed.Group("/tasks")
	{
		tasks.GET("", s.listTasks)
		tasks.POST("", s.createTask)
		tasks.GET("/search", s.searchTasks)
		tasks.GET("/date-range", s.tasksInRange)
		tasks.GET("/statistics", s.statistics)
		tasks.GET("/status/:value", s.tasksByStatus)
		tasks.GET("/category/:value", s.tasksByCategory)
		tasks.GET("/priority/:value", s.tasksByPriority)
		tasks.GET("/:id", s.getTask)
		tasks.PUT("/:id", s.updateTask)
		tasks.DELETE("/:id", s.deleteTask)
	}

	projects := authed.Group("/projects")
	{
		projects.GET("", s.listProjects)
		projects.POST("", s.createProject)
		projects.GET("/:id", s.getProject)
		projects.PUT("/:id", s.updateProject)
		projects.DELETE("/:id", s.deleteProject)
	}

	s.engine = r
}

// stamp is now at the millisecond precision of the wire format.
func (s *Server) stamp() time.Time { return s.now().UTC().Truncate(time.Millisecond) }
