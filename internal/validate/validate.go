// Package validate performs client-side validation of domain payloads before they reach the network.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
)

var (
	once sync.Once
	v    *validator.Validate
)

// Validator returns the shared validator with the task enum rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("task_priority", func(fl validator.FieldLevel) bool {
			return model.Priority(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
			return model.Status(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("task_category", func(fl validator.FieldLevel) bool {
			return model.Category(fl.Field().String()).Valid()
		})
	})
	return v
}

// Struct validates s and converts the first failure into a KindValidation error.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errs.Validation(message(verrs[0]))
	}
	return errs.Validation("validation failed")
}

// Task validates a task before create/update. Title length is measured after trimming.
func Task(t model.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	return Struct(t)
}

// Patch validates a partial update.
func Patch(p model.TaskPatch) error {
	if p.IsEmpty() {
		return errs.Validation("nothing to update")
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return errs.Validation("title must not be empty")
		}
		p.Title = &title
	}
	return Struct(p)
}

// DateRange checks that start is not after end.
func DateRange(start, end int64) error {
	if start > end {
		return errs.Validation("start date must not be after end date")
	}
	return nil
}

// Credentials checks login input.
func Credentials(email, password string) error {
	if email == "" || password == "" {
		return errs.Validation("email and password are required")
	}
	if err := Validator().Var(email, "email"); err != nil {
		return errs.Validation("invalid email")
	}
	return nil
}

// Email checks a single address.
func Email(email string) error {
	if email == "" {
		return errs.Validation("email must not be empty")
	}
	if err := Validator().Var(email, "email"); err != nil {
		return errs.Validation("invalid email")
	}
	return nil
}

// Password checks a new password.
func Password(p string) error {
	if err := Validator().Var(p, "required,min=6,max=100"); err != nil {
		return errs.Validation("password must be between 6 and 100 characters")
	}
	return nil
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch field {
	case "Title":
		if fe.Tag() == "required" {
			return "title must not be empty"
		}
		return "title must be between 3 and 100 characters"
	case "Description":
		return "description must be at most 500 characters"
	case "Priority":
		return fmt.Sprintf("invalid priority %q", fe.Value())
	case "Status":
		return fmt.Sprintf("invalid status %q", fe.Value())
	case "Category":
		return fmt.Sprintf("invalid category %q", fe.Value())
	case "Email":
		return "invalid email"
	case "Username":
		return "username must be between 3 and 50 characters"
	case "Password":
		return "password must be between 6 and 100 characters"
	case "Name":
		return "name must be between 1 and 100 characters"
	}
	return fmt.Sprintf("invalid %s", field)
}
