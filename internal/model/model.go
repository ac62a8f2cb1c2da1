// Package model defines domain entities used by services, repositories and the remote client.
package model

import (
	"strings"
	"time"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Status is the lifecycle stage of a task.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Category groups tasks by area of life.
type Category string

const (
	CategoryPersonal  Category = "PERSONAL"
	CategoryWork      Category = "WORK"
	CategoryHealth    Category = "HEALTH"
	CategoryEducation Category = "EDUCATION"
	CategoryFinance   Category = "FINANCE"
	CategoryOther     Category = "OTHER"
)

// Priorities lists all priorities in ascending urgency.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Statuses lists all task statuses.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// Categories lists all task categories.
var Categories = []Category{CategoryPersonal, CategoryWork, CategoryHealth, CategoryEducation, CategoryFinance, CategoryOther}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

// PathValue is the lower-case form used in filter URLs.
func (p Priority) PathValue() string { return strings.ToLower(string(p)) }

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// PathValue is the lower-case form used in filter URLs.
func (s Status) PathValue() string { return strings.ToLower(string(s)) }

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// PathValue is the lower-case form used in filter URLs.
func (c Category) PathValue() string { return strings.ToLower(string(c)) }

// ParsePriority parses a priority case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	return p, p.Valid()
}

// ParseStatus parses a status case-insensitively; "-" may be used instead of "_".
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	return st, st.Valid()
}

// ParseCategory parses a category case-insensitively.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.Valid()
}

// Task is a single user-owned to-do item.
// TaskID is assigned by the server; zero means the task has not been created yet.
type Task struct {
	TaskID      int64      `validate:"gte=0"`
	UserID      string     // owner
	Title       string     `validate:"required,min=3,max=100"`
	Description string     `validate:"max=500"`
	DueDate     *time.Time // optional
	IsCompleted bool
	Priority    Priority `validate:"omitempty,task_priority"`
	Status      Status   `validate:"omitempty,task_status"`
	Category    Category `validate:"omitempty,task_category"`
	CreatedAt   time.Time // server-authoritative once created
	UpdatedAt   time.Time
}

// NewTask returns a pending task with default priority, status and category.
func NewTask(userID, title string) Task {
	return Task{
		UserID:   userID,
		Title:    title,
		Priority: PriorityMedium,
		Status:   StatusPending,
		Category: CategoryPersonal,
	}
}

// IsNew reports whether the task is still pending creation.
func (t Task) IsNew() bool { return t.TaskID == 0 }

// IsOverdue reports whether the task has a due date in the past and is not completed.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && !t.IsCompleted && t.DueDate.Before(now)
}

// WithDefaults fills empty enum fields with their defaults.
func (t Task) WithDefaults() Task {
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Category == "" {
		t.Category = CategoryPersonal
	}
	return t
}

// CreateTask is the payload sent when creating a task.
type CreateTask struct {
	Title       string     `validate:"required,min=3,max=100"`
	Description string     `validate:"max=500"`
	DueDate     *time.Time
	Priority    Priority `validate:"omitempty,task_priority"`
	Category    Category `validate:"omitempty,task_category"`
}

// CreateFromTask builds a creation payload from a pending task.
func CreateFromTask(t Task) CreateTask {
	t = t.WithDefaults()
	return CreateTask{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Category:    t.Category,
	}
}

// TaskPatch is a partial update; nil fields are left unchanged by the server.
type TaskPatch struct {
	Title       *string `validate:"omitempty,min=3,max=100"`
	Description *string `validate:"omitempty,max=500"`
	DueDate     *time.Time
	IsCompleted *bool
	Priority    *Priority `validate:"omitempty,task_priority"`
	Status      *Status   `validate:"omitempty,task_status"`
	Category    *Category `validate:"omitempty,task_category"`
}

// FullPatch builds a patch carrying every mutable field of t.
func FullPatch(t Task) TaskPatch {
	t = t.WithDefaults()
	return TaskPatch{
		Title:       &t.Title,
		Description: &t.Description,
		DueDate:     t.DueDate,
		IsCompleted: &t.IsCompleted,
		Priority:    &t.Priority,
		Status:      &t.Status,
		Category:    &t.Category,
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && p.IsCompleted == nil &&
		p.Priority == nil && p.Status == nil && p.Category == nil
}

// Apply returns t with the non-nil fields of p applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	return t
}

// FilterKind selects which attribute a filtered listing uses.
type FilterKind string

const (
	FilterStatus   FilterKind = "status"
	FilterCategory FilterKind = "category"
	FilterPriority FilterKind = "priority"
)

// TaskStatistics summarizes a user's tasks.
type TaskStatistics struct {
	TotalTasks     int
	CompletedTasks int
	PendingTasks   int
	OverdueTasks   int
	CompletionRate float64
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalPages int
	TotalItems int
}

// User is an authenticated identity.
type User struct {
	UserID            string `validate:"required"`
	Username          string `validate:"required,min=3,max=50"`
	Email             string `validate:"required,email"`
	FirstName         string
	LastName          string
	ProfilePictureURL string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AuthSession is returned by login and registration. Tokens may be empty.
type AuthSession struct {
	User         User
	AccessToken  string
	RefreshToken string
}

// Tokens collects issued access/refresh tokens (refresh optional).
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry
}

// Registration is the payload of a sign-up request.
type Registration struct {
	Username  string `validate:"required,min=3,max=50"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=6,max=100"`
	FirstName string
	LastName  string
}

// ProfileUpdate carries user profile changes; nil fields are unchanged.
type ProfileUpdate struct {
	Username          *string `validate:"omitempty,min=3,max=50"`
	Email             *string `validate:"omitempty,email"`
	FirstName         *string
	LastName          *string
	ProfilePictureURL *string `validate:"omitempty,url"`
}

// Project groups tasks under a name.
type Project struct {
	ProjectID   string
	Name        string `validate:"required,min=1,max=100"`
	Description string `validate:"max=500"`
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
