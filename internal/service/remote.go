// Package service contains the client-side services that keep the local store in step with the task API.
package service

import (
	"context"

	"github.com/and161185/taskmaster/internal/api"
	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
)

// TaskRemote is the part of the API client used by TaskService.
type TaskRemote interface {
	ListTasks(ctx context.Context, page, pageSize int) (api.Envelope[api.Paginated[api.Task]], error)
	GetTask(ctx context.Context, id int64) (api.Envelope[api.Task], error)
	CreateTask(ctx context.Context, req api.CreateTaskRequest) (api.Envelope[api.Task], error)
	UpdateTask(ctx context.Context, id int64, req api.UpdateTaskRequest) (api.Envelope[api.Task], error)
	DeleteTask(ctx context.Context, id int64) (api.Envelope[api.Unit], error)
	ListTasksByFilter(ctx context.Context, kind model.FilterKind, value string) (api.Envelope[[]api.Task], error)
	SearchTasks(ctx context.Context, query string) (api.Envelope[[]api.Task], error)
	ListTasksInRange(ctx context.Context, start, end int64) (api.Envelope[[]api.Task], error)
	Statistics(ctx context.Context) (api.Envelope[api.TaskStatistics], error)
}

// AuthRemote is the part of the API client used by AuthService.
type AuthRemote interface {
	Login(ctx context.Context, req api.LoginRequest) (api.Envelope[api.User], error)
	Register(ctx context.Context, req api.RegisterRequest) (api.Envelope[api.User], error)
	Refresh(ctx context.Context, refreshToken string) (api.Envelope[string], error)
	Logout(ctx context.Context) (api.Envelope[api.Unit], error)
	ForgotPassword(ctx context.Context, email string) (api.Envelope[api.Unit], error)
	ResetPassword(ctx context.Context, token, newPassword string) (api.Envelope[api.Unit], error)
	ChangePassword(ctx context.Context, current, newPassword string) (api.Envelope[api.Unit], error)
	VerifyEmail(ctx context.Context, token string) (api.Envelope[api.Unit], error)
}

// UserRemote is the part of the API client used by UserService.
type UserRemote interface {
	Profile(ctx context.Context) (api.Envelope[api.User], error)
	UpdateProfile(ctx context.Context, req api.ProfileUpdate) (api.Envelope[api.User], error)
	DeleteProfile(ctx context.Context) (api.Envelope[api.Unit], error)
}

// ProjectRemote is the part of the API client used by ProjectService.
type ProjectRemote interface {
	ListProjects(ctx context.Context) (api.Envelope[[]api.Project], error)
	GetProject(ctx context.Context, id string) (api.Envelope[api.Project], error)
	CreateProject(ctx context.Context, p api.Project) (api.Envelope[api.Project], error)
	UpdateProject(ctx context.Context, id string, p api.Project) (api.Envelope[api.Project], error)
	DeleteProject(ctx context.Context, id string) (api.Envelope[api.Unit], error)
}

// Fallback messages for rejections that carry no text.
const (
	msgFetchTasks    = "Failed to fetch tasks"
	msgFetchTask     = "Failed to fetch task"
	msgCreateTask    = "Failed to create task"
	msgUpdateTask    = "Failed to update task"
	msgDeleteTask    = "Failed to delete task"
	msgByStatus      = "Failed to fetch tasks by status"
	msgByCategory    = "Failed to fetch tasks by category"
	msgByPriority    = "Failed to fetch tasks by priority"
	msgSearch        = "Failed to search tasks"
	msgDateRange     = "Failed to fetch tasks by date range"
	msgStatistics    = "Failed to fetch task statistics"
	msgLogin         = "Failed to login"
	msgRegister      = "Failed to register"
	msgLogout        = "Failed to logout"
	msgRefresh       = "Failed to refresh token"
	msgForgot        = "Failed to send reset email"
	msgReset         = "Failed to reset password"
	msgChangePass    = "Failed to change password"
	msgVerifyEmail   = "Failed to verify email"
	msgProfile       = "Failed to fetch profile"
	msgUpdateProfile = "Failed to update profile"
	msgDeleteProfile = "Failed to delete account"
	msgProjects      = "Failed to fetch projects"
	msgProject       = "Failed to fetch project"
	msgCreateProject = "Failed to create project"
	msgUpdateProject = "Failed to update project"
	msgDeleteProject = "Failed to delete project"
)

// unwrap normalizes one API round trip: transport faults and rejections become *errs.Error,
// otherwise the (possibly nil) payload is returned.
func unwrap[W any](env api.Envelope[W], err error, fallback string) (*W, *errs.Error) {
	if err != nil {
		return nil, errs.Transport(err)
	}
	if !env.Success {
		return nil, errs.Rejected(env.MessageText(), env.ErrorText(), fallback)
	}
	return env.Data, nil
}

// confirm is unwrap for calls whose payload is irrelevant.
func confirm[W any](env api.Envelope[W], err error, fallback string) *errs.Error {
	_, e := unwrap(env, err, fallback)
	return e
}
