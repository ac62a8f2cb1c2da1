// Package usecase gives each service operation a stable name for callers.
package usecase

import (
	"context"
	"time"

	"github.com/and161185/taskmaster/internal/model"
	"github.com/and161185/taskmaster/internal/result"
	"github.com/and161185/taskmaster/internal/service"
)

// TaskUseCases wraps TaskService.
type TaskUseCases struct{ Tasks service.TaskService }

func (u TaskUseCases) GetTasks(ctx context.Context, page, pageSize int) result.Result[model.Page[model.Task]] {
	return u.Tasks.GetTasks(ctx, page, pageSize)
}

func (u TaskUseCases) GetTaskByID(ctx context.Context, id int64) result.Result[model.Task] {
	return u.Tasks.GetTask(ctx, id)
}

func (u TaskUseCases) GetTasksByStatus(ctx context.Context, s model.Status) result.Result[[]model.Task] {
	return u.Tasks.GetTasksByStatus(ctx, s)
}

func (u TaskUseCases) GetTasksByCategory(ctx context.Context, c model.Category) result.Result[[]model.Task] {
	return u.Tasks.GetTasksByCategory(ctx, c)
}

func (u TaskUseCases) GetTasksByPriority(ctx context.Context, p model.Priority) result.Result[[]model.Task] {
	return u.Tasks.GetTasksByPriority(ctx, p)
}

func (u TaskUseCases) SearchTasks(ctx context.Context, q string) result.Result[[]model.Task] {
	return u.Tasks.SearchTasks(ctx, q)
}

func (u TaskUseCases) GetTasksByDateRange(ctx context.Context, start, end time.Time) result.Result[[]model.Task] {
	return u.Tasks.GetTasksByDateRange(ctx, start, end)
}

func (u TaskUseCases) GetTaskStatistics(ctx context.Context) result.Result[model.TaskStatistics] {
	return u.Tasks.GetStatistics(ctx)
}

func (u TaskUseCases) CreateTask(ctx context.Context, t model.Task) result.Result[model.Task] {
	return u.Tasks.CreateTask(ctx, t)
}

func (u TaskUseCases) UpdateTask(ctx context.Context, t model.Task) result.Result[model.Task] {
	return u.Tasks.UpdateTask(ctx, t)
}

func (u TaskUseCases) PatchTask(ctx context.Context, id int64, p model.TaskPatch) result.Result[model.Task] {
	return u.Tasks.PatchTask(ctx, id, p)
}

func (u TaskUseCases) SaveTask(ctx context.Context, t model.Task) result.Result[model.Task] {
	return u.Tasks.SaveTask(ctx, t)
}

func (u TaskUseCases) DeleteTask(ctx context.Context, id int64) result.Result[struct{}] {
	return u.Tasks.DeleteTask(ctx, id)
}

func (u TaskUseCases) ObserveTasks(ctx context.Context) <-chan result.Result[[]model.Task] {
	return u.Tasks.ObserveTasks(ctx)
}

func (u TaskUseCases) ObserveTask(ctx context.Context, id int64) <-chan result.Result[*model.Task] {
	return u.Tasks.ObserveTask(ctx, id)
}

// ToggleCompletion flips IsCompleted and moves the status along with it.
func (u TaskUseCases) ToggleCompletion(ctx context.Context, t model.Task) result.Result[model.Task] {
	done := !t.IsCompleted
	status := model.StatusPending
	if done {
		status = model.StatusCompleted
	}
	return u.Tasks.PatchTask(ctx, t.TaskID, model.TaskPatch{IsCompleted: &done, Status: &status})
}

// AuthUseCases wraps AuthService.
type AuthUseCases struct{ Auth service.AuthService }

func (u AuthUseCases) Login(ctx context.Context, email, password string) result.Result[model.User] {
	return u.Auth.Login(ctx, email, password)
}

func (u AuthUseCases) Register(ctx context.Context, r model.Registration) result.Result[model.User] {
	return u.Auth.Register(ctx, r)
}

func (u AuthUseCases) Logout(ctx context.Context) result.Result[struct{}] { return u.Auth.Logout(ctx) }

func (u AuthUseCases) RefreshToken(ctx context.Context) result.Result[string] {
	return u.Auth.RefreshToken(ctx)
}

func (u AuthUseCases) ForgotPassword(ctx context.Context, email string) result.Result[struct{}] {
	return u.Auth.ForgotPassword(ctx, email)
}

func (u AuthUseCases) ResetPassword(ctx context.Context, token, newPassword string) result.Result[struct{}] {
	return u.Auth.ResetPassword(ctx, token, newPassword)
}

func (u AuthUseCases) ChangePassword(ctx context.Context, current, newPassword string) result.Result[struct{}] {
	return u.Auth.ChangePassword(ctx, current, newPassword)
}

func (u AuthUseCases) VerifyEmail(ctx context.Context, token string) result.Result[struct{}] {
	return u.Auth.VerifyEmail(ctx, token)
}

func (u AuthUseCases) IsLoggedIn(ctx context.Context) <-chan result.Result[bool] {
	return u.Auth.IsLoggedIn(ctx)
}

func (u AuthUseCases) GetCurrentUser(ctx context.Context) result.Result[model.User] {
	return u.Auth.CurrentUser(ctx)
}

// UserUseCases wraps UserService.
type UserUseCases struct{ Users service.UserService }

func (u UserUseCases) GetProfile(ctx context.Context) result.Result[model.User] {
	return u.Users.Profile(ctx)
}

func (u UserUseCases) UpdateProfile(ctx context.Context, p model.ProfileUpdate) result.Result[model.User] {
	return u.Users.UpdateProfile(ctx, p)
}

func (u UserUseCases) DeleteAccount(ctx context.Context) result.Result[struct{}] {
	return u.Users.DeleteAccount(ctx)
}

// ProjectUseCases wraps ProjectService.
type ProjectUseCases struct{ Projects service.ProjectService }

func (u ProjectUseCases) GetProjects(ctx context.Context) result.Result[[]model.Project] {
	return u.Projects.ListProjects(ctx)
}

func (u ProjectUseCases) GetProject(ctx context.Context, id string) result.Result[model.Project] {
	return u.Projects.GetProject(ctx, id)
}

func (u ProjectUseCases) CreateProject(ctx context.Context, p model.Project) result.Result[model.Project] {
	return u.Projects.CreateProject(ctx, p)
}

func (u ProjectUseCases) UpdateProject(ctx context.Context, p model.Project) result.Result[model.Project] {
	return u.Projects.UpdateProject(ctx, p)
}

func (u ProjectUseCases) DeleteProject(ctx context.Context, id string) result.Result[struct{}] {
	return u.Projects.DeleteProject(ctx, id)
}
