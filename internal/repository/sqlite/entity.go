package sqlite

import (
	"time"

	"github.com/and161185/taskmaster/internal/model"
)

// taskRow is the cached copy of a server task.
// Timestamps are server-authoritative, so gorm must not touch them.
type taskRow struct {
	TaskID      int64      `gorm:"column:task_id;primaryKey;autoIncrement:false"`
	UserID      string     `gorm:"column:user_id;size:64;not null;index"`
	Title       string     `gorm:"size:100;not null"`
	Description string     `gorm:"size:500"`
	DueDate     *time.Time `gorm:"column:due_date;index"`
	IsCompleted bool       `gorm:"column:is_completed;not null"`
	Priority    string     `gorm:"size:16;not null"`
	Status      string     `gorm:"size:16;not null"`
	Category    string     `gorm:"size:16;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime:false"`
}

// TableName returns the table name for cached tasks.
func (taskRow) TableName() string { return "tasks" }

func toTaskRow(t model.Task) taskRow {
	return taskRow{
		TaskID:      t.TaskID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		IsCompleted: t.IsCompleted,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Category:    string(t.Category),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r taskRow) toModel() model.Task {
	return model.Task{
		TaskID:      r.TaskID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		IsCompleted: r.IsCompleted,
		Priority:    model.Priority(r.Priority),
		Status:      model.Status(r.Status),
		Category:    model.Category(r.Category),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// userRow is the current-user slot. The table holds at most one row.
type userRow struct {
	UserID            string    `gorm:"column:user_id;primaryKey;size:64"`
	Username          string    `gorm:"size:50;not null"`
	Email             string    `gorm:"size:255;not null"`
	FirstName         string    `gorm:"column:first_name;size:100"`
	LastName          string    `gorm:"column:last_name;size:100"`
	ProfilePictureURL string    `gorm:"column:profile_picture_url;size:500"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

// TableName returns the table name for the current user.
func (userRow) TableName() string { return "users" }

func toUserRow(u model.User) userRow {
	return userRow{
		UserID:            u.UserID,
		Username:          u.Username,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		ProfilePictureURL: u.ProfilePictureURL,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (r userRow) toModel() model.User {
	return model.User{
		UserID:            r.UserID,
		Username:          r.Username,
		Email:             r.Email,
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		ProfilePictureURL: r.ProfilePictureURL,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
