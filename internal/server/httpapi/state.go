package httpapi

import (
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
)

// errInvalidToken is returned for unknown or expired one-time tokens.
var errInvalidToken = errors.New("invalid or expired token")

type account struct {
	user     model.User
	hash     string
	verified bool
	refresh  map[string]time.Time // live refresh token ids
}

type oneTime struct {
	userID    string
	expiresAt time.Time
}

// state is the whole server-side data set, kept in memory.
type state struct {
	mu sync.RWMutex

	accounts map[string]*account // by user id
	byEmail  map[string]string
	byName   map[string]string

	tasks  map[int64]model.Task
	nextID int64

	projects map[string]model.Project

	resets   map[string]oneTime
	verifies map[string]oneTime
	revoked  map[string]time.Time // access token ids revoked before expiry
}

func newState() *state {
	return &state{
		accounts: map[string]*account{},
		byEmail:  map[string]string{},
		byName:   map[string]string{},
		tasks:    map[int64]model.Task{},
		projects: map[string]model.Project{},
		resets:   map[string]oneTime{},
		verifies: map[string]oneTime{},
		revoked:  map[string]time.Time{},
	}
}

func emailKey(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
func nameKey(n string) string  { return strings.ToLower(strings.TrimSpace(n)) }

// ---- accounts ----

func (s *state) addAccount(a *account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[emailKey(a.user.Email)]; ok {
		return errs.ErrAlreadyExists
	}
	if _, ok := s.byName[nameKey(a.user.Username)]; ok {
		return errs.ErrAlreadyExists
	}
	s.accounts[a.user.UserID] = a
	s.byEmail[emailKey(a.user.Email)] = a.user.UserID
	s.byName[nameKey(a.user.Username)] = a.user.UserID
	return nil
}

// accountByEmail returns a copy of the account fields needed for login.
func (s *state) accountByEmail(email string) (model.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return model.User{}, "", errs.ErrNotFound
	}
	a := s.accounts[id]
	return a.user, a.hash, nil
}

func (s *state) user(id string) (model.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.User{}, "", errs.ErrNotFound
	}
	return a.user, a.hash, nil
}

func (s *state) setHash(id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return errs.ErrNotFound
	}
	a.hash = hash
	a.refresh = map[string]time.Time{}
	return nil
}

// updateUser applies fn to a copy of the user and stores it if the unique keys stay free.
func (s *state) updateUser(id string, fn func(*model.User)) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	u := a.user
	fn(&u)
	if other, ok := s.byEmail[emailKey(u.Email)]; ok && other != id {
		return model.User{}, errs.ErrAlreadyExists
	}
	if other, ok := s.byName[nameKey(u.Username)]; ok && other != id {
		return model.User{}, errs.ErrAlreadyExists
	}
	delete(s.byEmail, emailKey(a.user.Email))
	delete(s.byName, nameKey(a.user.Username))
	s.byEmail[emailKey(u.Email)] = id
	s.byName[nameKey(u.Username)] = id
	a.user = u
	return u, nil
}

// deleteAccount removes the account with all its tasks and projects.
func (s *state) deleteAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return errs.ErrNotFound
	}
	delete(s.byEmail, emailKey(a.user.Email))
	delete(s.byName, nameKey(a.user.Username))
	delete(s.accounts, id)
	for k, t := range s.tasks {
		if t.UserID == id {
			delete(s.tasks, k)
		}
	}
	for k, p := range s.projects {
		if p.UserID == id {
			delete(s.projects, k)
		}
	}
	return nil
}

func (s *state) addRefresh(userID, jti string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[userID]; ok {
		if a.refresh == nil {
			a.refresh = map[string]time.Time{}
		}
		a.refresh[jti] = exp
	}
}

func (s *state) hasRefresh(userID, jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[userID]
	if !ok {
		return false
	}
	_, ok = a.refresh[jti]
	return ok
}

// endSession revokes one access token and every refresh token of the user.
func (s *state) endSession(userID, accessID string, accessExp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[accessID] = accessExp
	if a, ok := s.accounts[userID]; ok {
		a.refresh = map[string]time.Time{}
	}
	now := time.Now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
}

func (s *state) isRevoked(accessID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[accessID]
	return ok
}

func (s *state) putOneTime(m map[string]oneTime, token string, ot oneTime) {
	s.mu.Lock()
	m[token] = ot
	s.mu.Unlock()
}

// takeOneTime consumes a one-time token.
func (s *state) takeOneTime(m map[string]oneTime, token string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ot, ok := m[token]
	if !ok {
		return "", errInvalidToken
	}
	delete(m, token)
	if now.After(ot.expiresAt) {
		return "", errInvalidToken
	}
	return ot.userID, nil
}

func (s *state) markVerified(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return errs.ErrNotFound
	}
	a.verified = true
	return nil
}

// ---- tasks ----

// byDueDate orders by due date (undated last), then id.
func byDueDate(ts []model.Task) {
	sort.Slice(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return a.TaskID < b.TaskID
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		case !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		default:
			return a.TaskID < b.TaskID
		}
	})
}

// tasksWhere returns the user's tasks matching keep, ordered by due date.
func (s *state) tasksWhere(userID string, keep func(model.Task) bool) []model.Task {
	s.mu.RLock()
	out := []model.Task{}
	for _, t := range s.tasks {
		if t.UserID == userID && (keep == nil || keep(t)) {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()
	byDueDate(out)
	return out
}

func (s *state) task(userID string, id int64) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return model.Task{}, errs.ErrNotFound
	}
	return t, nil
}

func (s *state) createTask(userID string, c model.CreateTask, now time.Time) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t := model.Task{
		TaskID:      s.nextID,
		UserID:      userID,
		Title:       c.Title,
		Description: c.Description,
		DueDate:     c.DueDate,
		Priority:    c.Priority,
		Status:      model.StatusPending,
		Category:    c.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}.WithDefaults()
	s.tasks[t.TaskID] = t
	return t
}

func (s *state) updateTask(userID string, id int64, p model.TaskPatch, now time.Time) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return model.Task{}, errs.ErrNotFound
	}
	t = p.Apply(t)
	t.UpdatedAt = now
	s.tasks[id] = t
	return t, nil
}

func (s *state) deleteTask(userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return errs.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// page slices ts into the requested page; page and size must already be normalized.
func page(ts []model.Task, pg, size int) model.Page[model.Task] {
	total := len(ts)
	from := (pg - 1) * size
	if from > total {
		from = total
	}
	to := from + size
	if to > total {
		to = total
	}
	return model.Page[model.Task]{
		Items:      ts[from:to],
		Page:       pg,
		PageSize:   size,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
		TotalItems: total,
	}
}

func statistics(ts []model.Task, now time.Time) model.TaskStatistics {
	var st model.TaskStatistics
	st.TotalTasks = len(ts)
	for _, t := range ts {
		if t.IsCompleted {
			st.CompletedTasks++
		}
		if t.IsOverdue(now) {
			st.OverdueTasks++
		}
	}
	st.PendingTasks = st.TotalTasks - st.CompletedTasks
	if st.TotalTasks > 0 {
		st.CompletionRate = float64(st.CompletedTasks) / float64(st.TotalTasks)
	}
	return st
}

// ---- projects ----

func (s *state) projectsOf(userID string) []model.Project {
	s.mu.RLock()
	out := []model.Project{}
	for _, p := range s.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out
}

func (s *state) project(userID, id string) (model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return model.Project{}, errs.ErrNotFound
	}
	return p, nil
}

func (s *state) putProject(p model.Project) {
	s.mu.Lock()
	s.projects[p.ProjectID] = p
	s.mu.Unlock()
}

func (s *state) updateProject(userID, id string, fn func(*model.Project)) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return model.Project{}, errs.ErrNotFound
	}
	fn(&p)
	s.projects[id] = p
	return p, nil
}

func (s *state) deleteProject(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return errs.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}
