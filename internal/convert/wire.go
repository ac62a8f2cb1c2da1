// Package convert maps domain models to the JSON wire contract and back.
package convert

import (
	"time"

	"github.com/and161185/taskmaster/internal/api"
	"github.com/and161185/taskmaster/internal/model"
)

// --- helpers ---

// Millis converts t to epoch milliseconds; the zero time maps to 0.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to UTC time; 0 maps to the zero time.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func millisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func timePtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// --- Task ---

// ToAPITask converts a domain task to its wire form.
func ToAPITask(t model.Task) api.Task {
	return api.Task{
		TaskID:      t.TaskID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: strPtr(t.Description),
		DueDate:     millisPtr(t.DueDate),
		IsCompleted: t.IsCompleted,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Category:    string(t.Category),
		CreatedAt:   Millis(t.CreatedAt),
		UpdatedAt:   Millis(t.UpdatedAt),
	}
}

// FromAPITask converts a wire task to the domain; unknown enum values fall back to defaults.
func FromAPITask(in api.Task) model.Task {
	t := model.Task{
		TaskID:      in.TaskID,
		UserID:      in.UserID,
		Title:       in.Title,
		Description: str(in.Description),
		DueDate:     timePtr(in.DueDate),
		IsCompleted: in.IsCompleted,
		CreatedAt:   FromMillis(in.CreatedAt),
		UpdatedAt:   FromMillis(in.UpdatedAt),
	}
	t.Priority, _ = model.ParsePriority(in.Priority)
	t.Status, _ = model.ParseStatus(in.Status)
	t.Category, _ = model.ParseCategory(in.Category)
	if !t.Priority.Valid() {
		t.Priority = model.PriorityMedium
	}
	if !t.Status.Valid() {
		t.Status = model.StatusPending
	}
	if !t.Category.Valid() {
		t.Category = model.CategoryPersonal
	}
	return t
}

// FromAPITasks converts a slice of wire tasks; nil becomes an empty slice.
func FromAPITasks(in []api.Task) []model.Task {
	out := make([]model.Task, 0, len(in))
	for _, t := range in {
		out = append(out, FromAPITask(t))
	}
	return out
}

// ToAPITasks converts a slice of domain tasks.
func ToAPITasks(in []model.Task) []api.Task {
	out := make([]api.Task, 0, len(in))
	for _, t := range in {
		out = append(out, ToAPITask(t))
	}
	return out
}

// FromAPIPage converts a paginated listing.
func FromAPIPage(in api.Paginated[api.Task]) model.Page[model.Task] {
	return model.Page[model.Task]{
		Items:      FromAPITasks(in.Data),
		Page:       in.Page,
		PageSize:   in.PageSize,
		TotalPages: in.TotalPages,
		TotalItems: in.TotalItems,
	}
}

// ToCreateRequest converts a creation payload.
func ToCreateRequest(c model.CreateTask) api.CreateTaskRequest {
	return api.CreateTaskRequest{
		Title:       c.Title,
		Description: strPtr(c.Description),
		DueDate:     millisPtr(c.DueDate),
		Priority:    string(c.Priority),
		Category:    string(c.Category),
	}
}

// FromCreateRequest converts a wire creation payload; invalid enum values are reported via ok=false.
// Empty enums are left empty for the receiver to default.
func FromCreateRequest(in api.CreateTaskRequest) (c model.CreateTask, ok bool) {
	c = model.CreateTask{
		Title:       in.Title,
		Description: str(in.Description),
		DueDate:     timePtr(in.DueDate),
	}
	if in.Priority != "" {
		if c.Priority, ok = model.ParsePriority(in.Priority); !ok {
			return c, false
		}
	}
	if in.Category != "" {
		if c.Category, ok = model.ParseCategory(in.Category); !ok {
			return c, false
		}
	}
	return c, true
}

// ToUpdateRequest converts a partial update.
func ToUpdateRequest(p model.TaskPatch) api.UpdateTaskRequest {
	out := api.UpdateTaskRequest{
		Title:       p.Title,
		Description: p.Description,
		DueDate:     millisPtr(p.DueDate),
		IsCompleted: p.IsCompleted,
	}
	if p.Priority != nil {
		s := string(*p.Priority)
		out.Priority = &s
	}
	if p.Status != nil {
		s := string(*p.Status)
		out.Status = &s
	}
	if p.Category != nil {
		s := string(*p.Category)
		out.Category = &s
	}
	return out
}

// FromUpdateRequest converts a wire partial update; invalid enum values are reported via ok=false.
func FromUpdateRequest(in api.UpdateTaskRequest) (p model.TaskPatch, ok bool) {
	p = model.TaskPatch{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     timePtr(in.DueDate),
		IsCompleted: in.IsCompleted,
	}
	if in.Priority != nil {
		v, valid := model.ParsePriority(*in.Priority)
		if !valid {
			return p, false
		}
		p.Priority = &v
	}
	if in.Status != nil {
		v, valid := model.ParseStatus(*in.Status)
		if !valid {
			return p, false
		}
		p.Status = &v
	}
	if in.Category != nil {
		v, valid := model.ParseCategory(*in.Category)
		if !valid {
			return p, false
		}
		p.Category = &v
	}
	return p, true
}

// --- Statistics ---

// FromAPIStatistics converts statistics.
func FromAPIStatistics(in api.TaskStatistics) model.TaskStatistics {
	return model.TaskStatistics(in)
}

// ToAPIStatistics converts statistics.
func ToAPIStatistics(in model.TaskStatistics) api.TaskStatistics {
	return api.TaskStatistics(in)
}

// --- User ---

// ToAPIUser converts a domain user.
func ToAPIUser(u model.User) api.User {
	return api.User{
		UserID:            u.UserID,
		Username:          u.Username,
		Email:             u.Email,
		FirstName:         strPtr(u.FirstName),
		LastName:          strPtr(u.LastName),
		ProfilePictureURL: strPtr(u.ProfilePictureURL),
		CreatedAt:         Millis(u.CreatedAt),
		UpdatedAt:         Millis(u.UpdatedAt),
	}
}

// FromAPIUser converts a wire user.
func FromAPIUser(in api.User) model.User {
	return model.User{
		UserID:            in.UserID,
		Username:          in.Username,
		Email:             in.Email,
		FirstName:         str(in.FirstName),
		LastName:          str(in.LastName),
		ProfilePictureURL: str(in.ProfilePictureURL),
		CreatedAt:         FromMillis(in.CreatedAt),
		UpdatedAt:         FromMillis(in.UpdatedAt),
	}
}

// FromAPISession extracts user and tokens from a login/register payload.
func FromAPISession(in api.User) model.AuthSession {
	return model.AuthSession{
		User:         FromAPIUser(in),
		AccessToken:  in.AccessToken,
		RefreshToken: in.RefreshToken,
	}
}

// ToRegisterRequest converts a sign-up payload; empty names are omitted.
func ToRegisterRequest(r model.Registration) api.RegisterRequest {
	return api.RegisterRequest{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: strPtr(r.FirstName),
		LastName:  strPtr(r.LastName),
	}
}

// ToAPIProfileUpdate converts a profile update.
func ToAPIProfileUpdate(in model.ProfileUpdate) api.ProfileUpdate {
	return api.ProfileUpdate(in)
}

// --- Project ---

// ToAPIProject converts a domain project.
func ToAPIProject(p model.Project) api.Project {
	return api.Project{
		ProjectID:   p.ProjectID,
		Name:        p.Name,
		Description: strPtr(p.Description),
		UserID:      p.UserID,
		CreatedAt:   Millis(p.CreatedAt),
		UpdatedAt:   Millis(p.UpdatedAt),
	}
}

// FromAPIProject converts a wire project.
func FromAPIProject(in api.Project) model.Project {
	return model.Project{
		ProjectID:   in.ProjectID,
		Name:        in.Name,
		Description: str(in.Description),
		UserID:      in.UserID,
		CreatedAt:   FromMillis(in.CreatedAt),
		UpdatedAt:   FromMillis(in.UpdatedAt),
	}
}

// FromAPIProjects converts a slice of wire projects.
func FromAPIProjects(in []api.Project) []model.Project {
	out := make([]model.Project, 0, len(in))
	for _, p := range in {
		out = append(out, FromAPIProject(p))
	}
	return out
}
