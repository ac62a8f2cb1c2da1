// Package api defines the JSON wire contract shared by the remote client and the reference server.
// Instants are epoch milliseconds; enum values are upper-case names.
package api

// Envelope is the uniform wrapper of every response.
type Envelope[T any] struct {
	Success bool    `json:"success"`
	Data    *T      `json:"data"`
	Message *string `json:"message"`
	Error   *string `json:"error"`
}

// MessageText returns the message or "".
func (e Envelope[T]) MessageText() string {
	if e.Message == nil {
		return ""
	}
	return *e.Message
}

// ErrorText returns the error detail or "".
func (e Envelope[T]) ErrorText() string {
	if e.Error == nil {
		return ""
	}
	return *e.Error
}

// Unit is the payload of operations that return nothing.
type Unit struct{}

// Task mirrors model.Task on the wire.
type Task struct {
	TaskID      int64   `json:"taskId"`
	UserID      string  `json:"userId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *int64  `json:"dueDate"`
	IsCompleted bool    `json:"isCompleted"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	Category    string  `json:"category"`
	CreatedAt   int64   `json:"createdAt"`
	UpdatedAt   int64   `json:"updatedAt"`
}

// Paginated is one page of a listing.
type Paginated[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

// CreateTaskRequest is the body of POST tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	DueDate     *int64  `json:"dueDate"`
	Priority    string  `json:"priority"`
	Category    string  `json:"category"`
}

// UpdateTaskRequest is the body of PUT tasks/{id}; absent fields are unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=3,max=100"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=500"`
	DueDate     *int64  `json:"dueDate,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// TaskStatistics mirrors model.TaskStatistics.
type TaskStatistics struct {
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	PendingTasks   int     `json:"pendingTasks"`
	OverdueTasks   int     `json:"overdueTasks"`
	CompletionRate float64 `json:"completionRate"`
}

// User mirrors model.User. Login and register responses may also carry tokens.
type User struct {
	UserID            string  `json:"userId"`
	Username          string  `json:"username"`
	Email             string  `json:"email"`
	FirstName         *string `json:"firstName"`
	LastName          *string `json:"lastName"`
	ProfilePictureURL *string `json:"profilePictureUrl"`
	CreatedAt         int64   `json:"createdAt"`
	UpdatedAt         int64   `json:"updatedAt"`
	AccessToken       string  `json:"accessToken,omitempty"`
	RefreshToken      string  `json:"refreshToken,omitempty"`
}

// LoginRequest is the body of auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the body of auth/register.
type RegisterRequest struct {
	Username  string  `json:"username" binding:"required,min=3,max=50"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=6,max=100"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// RefreshTokenRequest is the body of auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ProfileUpdate is the body of PUT user/profile.
type ProfileUpdate struct {
	Username          *string `json:"username,omitempty" binding:"omitempty,min=3,max=50"`
	Email             *string `json:"email,omitempty" binding:"omitempty,email"`
	FirstName         *string `json:"firstName,omitempty"`
	LastName          *string `json:"lastName,omitempty"`
	ProfilePictureURL *string `json:"profilePictureUrl,omitempty"`
}

// Project mirrors model.Project.
type Project struct {
	ProjectID   string  `json:"projectId"`
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description *string `json:"description"`
	UserID      string  `json:"userId"`
	CreatedAt   int64   `json:"createdAt"`
	UpdatedAt   int64   `json:"updatedAt"`
}

// Resource paths relative to the API base URL.
const (
	PathLogin          = "auth/login"
	PathRegister       = "auth/register"
	PathRefresh        = "auth/refresh"
	PathLogout         = "auth/logout"
	PathForgotPassword = "auth/forgot-password"
	PathResetPassword  = "auth/reset-password"
	PathChangePassword = "auth/change-password"
	PathVerifyEmail    = "auth/verify-email"
	PathProfile        = "user/profile"
	PathTasks          = "tasks"
	PathTaskSearch     = "tasks/search"
	PathTaskDateRange  = "tasks/date-range"
	PathTaskStatistics = "tasks/statistics"
	PathProjects       = "projects"
)
