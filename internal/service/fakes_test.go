package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/and161185/taskmaster/internal/api"
	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
	"github.com/and161185/taskmaster/internal/repository"
	"github.com/and161185/taskmaster/internal/repository/watch"
)

func ok[T any](v T) api.Envelope[T] { return api.Envelope[T]{Success: true, Data: &v} }

func empty[T any]() api.Envelope[T] { return api.Envelope[T]{Success: true} }

func rejected[T any](msg string) api.Envelope[T] {
	return api.Envelope[T]{Success: false, Message: &msg}
}

// ---- fake API ----

type fakeRemote struct {
	mu    sync.Mutex
	calls []string

	list     api.Envelope[api.Paginated[api.Task]]
	get      api.Envelope[api.Task]
	create   api.Envelope[api.Task]
	update   api.Envelope[api.Task]
	del      api.Envelope[api.Unit]
	filtered api.Envelope[[]api.Task]
	stats    api.Envelope[api.TaskStatistics]
	err      error

	// block, when set, holds write calls until closed.
	block chan struct{}

	lastCreate api.CreateTaskRequest
	lastUpdate api.UpdateTaskRequest
	lastPath   string

	login    api.Envelope[api.User]
	register api.Envelope[api.User]
	refresh  api.Envelope[string]
	unit     api.Envelope[api.Unit]
	profile  api.Envelope[api.User]
	projects api.Envelope[[]api.Project]
	project  api.Envelope[api.Project]
}

var (
	_ TaskRemote    = (*fakeRemote)(nil)
	_ AuthRemote    = (*fakeRemote)(nil)
	_ UserRemote    = (*fakeRemote)(nil)
	_ ProjectRemote = (*fakeRemote)(nil)
)

func (f *fakeRemote) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeRemote) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) wait() {
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeRemote) ListTasks(context.Context, int, int) (api.Envelope[api.Paginated[api.Task]], error) {
	f.record("ListTasks")
	return f.list, f.err
}
func (f *fakeRemote) GetTask(context.Context, int64) (api.Envelope[api.Task], error) {
	f.record("GetTask")
	return f.get, f.err
}
func (f *fakeRemote) CreateTask(_ context.Context, req api.CreateTaskRequest) (api.Envelope[api.Task], error) {
	f.record("CreateTask")
	f.wait()
	f.mu.Lock()
	f.lastCreate = req
	f.mu.Unlock()
	return f.create, f.err
}
func (f *fakeRemote) UpdateTask(_ context.Context, _ int64, req api.UpdateTaskRequest) (api.Envelope[api.Task], error) {
	f.record("UpdateTask")
	f.wait()
	f.mu.Lock()
	f.lastUpdate = req
	f.mu.Unlock()
	return f.update, f.err
}
func (f *fakeRemote) DeleteTask(context.Context, int64) (api.Envelope[api.Unit], error) {
	f.record("DeleteTask")
	f.wait()
	return f.del, f.err
}
func (f *fakeRemote) ListTasksByFilter(_ context.Context, kind model.FilterKind, value string) (api.Envelope[[]api.Task], error) {
	f.record("ListTasksByFilter")
	f.mu.Lock()
	f.lastPath = string(kind) + "/" + value
	f.mu.Unlock()
	return f.filtered, f.err
}
func (f *fakeRemote) SearchTasks(context.Context, string) (api.Envelope[[]api.Task], error) {
	f.record("SearchTasks")
	return f.filtered, f.err
}
func (f *fakeRemote) ListTasksInRange(context.Context, int64, int64) (api.Envelope[[]api.Task], error) {
	f.record("ListTasksInRange")
	return f.filtered, f.err
}
func (f *fakeRemote) Statistics(context.Context) (api.Envelope[api.TaskStatistics], error) {
	f.record("Statistics")
	return f.stats, f.err
}

func (f *fakeRemote) Login(context.Context, api.LoginRequest) (api.Envelope[api.User], error) {
	f.record("Login")
	return f.login, f.err
}
func (f *fakeRemote) Register(context.Context, api.RegisterRequest) (api.Envelope[api.User], error) {
	f.record("Register")
	return f.register, f.err
}
func (f *fakeRemote) Refresh(context.Context, string) (api.Envelope[string], error) {
	f.record("Refresh")
	return f.refresh, f.err
}
func (f *fakeRemote) Logout(context.Context) (api.Envelope[api.Unit], error) {
	f.record("Logout")
	return f.unit, f.err
}
func (f *fakeRemote) ForgotPassword(context.Context, string) (api.Envelope[api.Unit], error) {
	f.record("ForgotPassword")
	return f.unit, f.err
}
func (f *fakeRemote) ResetPassword(context.Context, string, string) (api.Envelope[api.Unit], error) {
	f.record("ResetPassword")
	return f.unit, f.err
}
func (f *fakeRemote) ChangePassword(context.Context, string, string) (api.Envelope[api.Unit], error) {
	f.record("ChangePassword")
	return f.unit, f.err
}
func (f *fakeRemote) VerifyEmail(context.Context, string) (api.Envelope[api.Unit], error) {
	f.record("VerifyEmail")
	return f.unit, f.err
}
func (f *fakeRemote) Profile(context.Context) (api.Envelope[api.User], error) {
	f.record("Profile")
	return f.profile, f.err
}
func (f *fakeRemote) UpdateProfile(context.Context, api.ProfileUpdate) (api.Envelope[api.User], error) {
	f.record("UpdateProfile")
	return f.profile, f.err
}
func (f *fakeRemote) DeleteProfile(context.Context) (api.Envelope[api.Unit], error) {
	f.record("DeleteProfile")
	return f.unit, f.err
}
func (f *fakeRemote) ListProjects(context.Context) (api.Envelope[[]api.Project], error) {
	f.record("ListProjects")
	return f.projects, f.err
}
func (f *fakeRemote) GetProject(context.Context, string) (api.Envelope[api.Project], error) {
	f.record("GetProject")
	return f.project, f.err
}
func (f *fakeRemote) CreateProject(context.Context, api.Project) (api.Envelope[api.Project], error) {
	f.record("CreateProject")
	return f.project, f.err
}
func (f *fakeRemote) UpdateProject(context.Context, string, api.Project) (api.Envelope[api.Project], error) {
	f.record("UpdateProject")
	return f.project, f.err
}
func (f *fakeRemote) DeleteProject(context.Context, string) (api.Envelope[api.Unit], error) {
	f.record("DeleteProject")
	return f.unit, f.err
}

// ---- fake local store ----

type fakeTaskStore struct {
	mu     sync.Mutex
	rows   map[int64]model.Task
	writes int

	upsertErr error
	hub       watch.Hub
}

var _ repository.TaskStore = (*fakeTaskStore)(nil)

func newFakeTaskStore(seed ...model.Task) *fakeTaskStore {
	s := &fakeTaskStore{rows: map[int64]model.Task{}}
	for _, t := range seed {
		s.rows[t.TaskID] = t
	}
	return s
}

func (s *fakeTaskStore) Upsert(_ context.Context, t model.Task) error {
	s.mu.Lock()
	if s.upsertErr != nil {
		s.mu.Unlock()
		return s.upsertErr
	}
	s.rows[t.TaskID] = t
	s.writes++
	s.mu.Unlock()
	s.hub.Notify()
	return nil
}

func (s *fakeTaskStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	delete(s.rows, id)
	s.writes++
	s.mu.Unlock()
	s.hub.Notify()
	return nil
}

func (s *fakeTaskStore) TasksForUser(_ context.Context, userID string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Task{}
	for _, t := range s.rows {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out, nil
}

func (s *fakeTaskStore) TaskByID(_ context.Context, id int64) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok {
		return model.Task{}, errs.ErrNotFound
	}
	return t, nil
}

func (s *fakeTaskStore) Subscribe() (<-chan struct{}, func()) { return s.hub.Subscribe() }

func (s *fakeTaskStore) snapshot() (map[int64]model.Task, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[int64]model.Task, len(s.rows))
	for k, v := range s.rows {
		cp[k] = v
	}
	return cp, s.writes
}

type fakeUserStore struct {
	mu      sync.Mutex
	current  *model.User
	setErr   error
	clearErr error
	hub      watch.Hub
}

var _ repository.UserStore = (*fakeUserStore)(nil)

func (s *fakeUserStore) SetCurrent(_ context.Context, u model.User) error {
	s.mu.Lock()
	if s.setErr != nil {
		s.mu.Unlock()
		return s.setErr
	}
	s.current = &u
	s.mu.Unlock()
	s.hub.Notify()
	return nil
}

func (s *fakeUserStore) Current(context.Context) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return model.User{}, errs.ErrNotFound
	}
	return *s.current, nil
}

func (s *fakeUserStore) ClearCurrent(context.Context) error {
	s.mu.Lock()
	if s.clearErr != nil {
		s.mu.Unlock()
		return s.clearErr
	}
	s.current = nil
	s.mu.Unlock()
	s.hub.Notify()
	return nil
}

func (s *fakeUserStore) Subscribe() (<-chan struct{}, func()) { return s.hub.Subscribe() }

var errDial = errors.New("dial tcp 127.0.0.1:8080: connect: connection refused")
