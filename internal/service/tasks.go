package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/taskmaster/internal/api"
	"github.com/and161185/taskmaster/internal/convert"
	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
	"github.com/and161185/taskmaster/internal/repository"
	"github.com/and161185/taskmaster/internal/repository/watch"
	"github.com/and161185/taskmaster/internal/result"
	"github.com/and161185/taskmaster/internal/session"
	"github.com/and161185/taskmaster/internal/validate"
)

// Paging defaults applied when the caller passes non-positive values.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TaskService is the single read/write surface for tasks.
//
// Reads always go to the API and never touch the local store. Writes go to the
// API first and mirror the confirmed server copy into the store. Observation
// reads only the store.
type TaskService interface {
	GetTasks(ctx context.Context, page, pageSize int) result.Result[model.Page[model.Task]]
	GetTask(ctx context.Context, id int64) result.Result[model.Task]
	GetTasksByStatus(ctx context.Context, status model.Status) result.Result[[]model.Task]
	GetTasksByCategory(ctx context.Context, category model.Category) result.Result[[]model.Task]
	GetTasksByPriority(ctx context.Context, priority model.Priority) result.Result[[]model.Task]
	SearchTasks(ctx context.Context, query string) result.Result[[]model.Task]
	GetTasksByDateRange(ctx context.Context, start, end time.Time) result.Result[[]model.Task]
	GetStatistics(ctx context.Context) result.Result[model.TaskStatistics]

	CreateTask(ctx context.Context, t model.Task) result.Result[model.Task]
	UpdateTask(ctx context.Context, t model.Task) result.Result[model.Task]
	PatchTask(ctx context.Context, id int64, p model.TaskPatch) result.Result[model.Task]
	SaveTask(ctx context.Context, t model.Task) result.Result[model.Task]
	DeleteTask(ctx context.Context, id int64) result.Result[struct{}]

	ObserveTasks(ctx context.Context) <-chan result.Result[[]model.Task]
	ObserveTask(ctx context.Context, id int64) <-chan result.Result[*model.Task]

	// Wait blocks until writes whose callers detached have finished.
	Wait()
}

// TaskServiceImpl implements TaskService over an API client and a local store.
// Mutations of the same task id are not serialized here; callers that need
// ordering must serialize them.
type TaskServiceImpl struct {
	remote TaskRemote
	store  repository.TaskStore
	log    *zap.Logger

	inflight sync.WaitGroup
}

var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService constructs TaskService with required dependencies.
func NewTaskService(remote TaskRemote, store repository.TaskStore, log *zap.Logger) *TaskServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskServiceImpl{remote: remote, store: store, log: log}
}

// GetTasks fetches one page of tasks.
func (s *TaskServiceImpl) GetTasks(ctx context.Context, page, pageSize int) result.Result[model.Page[model.Task]] {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	env, err := s.remote.ListTasks(ctx, page, pageSize)
	data, e := unwrap(env, err, msgFetchTasks)
	if e != nil {
		return result.Failure[model.Page[model.Task]](e)
	}
	if data == nil {
		return result.Success(model.Page[model.Task]{Items: []model.Task{}, Page: page, PageSize: pageSize})
	}
	return result.Success(convert.FromAPIPage(*data))
}

// GetTask fetches a single task.
func (s *TaskServiceImpl) GetTask(ctx context.Context, id int64) result.Result[model.Task] {
	if id <= 0 {
		return result.Failure[model.Task](errs.Validation("task id must be positive"))
	}
	env, err := s.remote.GetTask(ctx, id)
	data, e := unwrap(env, err, msgFetchTask)
	if e != nil {
		return result.Failure[model.Task](e)
	}
	if data == nil {
		return result.Failure[model.Task](errs.EmptyPayload())
	}
	return result.Success(convert.FromAPITask(*data))
}

// GetTasksByStatus lists tasks with the given status.
func (s *TaskServiceImpl) GetTasksByStatus(ctx context.Context, status model.Status) result.Result[[]model.Task] {
	if !status.Valid() {
		return result.Failure[[]model.Task](errs.Validation(fmt.Sprintf("invalid status %q", status)))
	}
	env, err := s.remote.ListTasksByFilter(ctx, model.FilterStatus, status.PathValue())
	return taskList(env, err, msgByStatus)
}

// GetTasksByCategory lists tasks in the given category.
func (s *TaskServiceImpl) GetTasksByCategory(ctx context.Context, category model.Category) result.Result[[]model.Task] {
	if !category.Valid() {
		return result.Failure[[]model.Task](errs.Validation(fmt.Sprintf("invalid category %q", category)))
	}
	env, err := s.remote.ListTasksByFilter(ctx, model.FilterCategory, category.PathValue())
	return taskList(env, err, msgByCategory)
}

// GetTasksByPriority lists tasks with the given priority.
func (s *TaskServiceImpl) GetTasksByPriority(ctx context.Context, priority model.Priority) result.Result[[]model.Task] {
	if !priority.Valid() {
		return result.Failure[[]model.Task](errs.Validation(fmt.Sprintf("invalid priority %q", priority)))
	}
	env, err := s.remote.ListTasksByFilter(ctx, model.FilterPriority, priority.PathValue())
	return taskList(env, err, msgByPriority)
}

// SearchTasks runs a free-text search.
func (s *TaskServiceImpl) SearchTasks(ctx context.Context, query string) result.Result[[]model.Task] {
	query = strings.TrimSpace(query)
	if query == "" {
		return result.Failure[[]model.Task](errs.Validation("search query must not be empty"))
	}
	env, err := s.remote.SearchTasks(ctx, query)
	return taskList(env, err, msgSearch)
}

// GetTasksByDateRange lists tasks due within [start, end].
func (s *TaskServiceImpl) GetTasksByDateRange(ctx context.Context, start, end time.Time) result.Result[[]model.Task] {
	from, to := convert.Millis(start), convert.Millis(end)
	if err := validate.DateRange(from, to); err != nil {
		return result.Failure[[]model.Task](err)
	}
	env, err := s.remote.ListTasksInRange(ctx, from, to)
	return taskList(env, err, msgDateRange)
}

// GetStatistics fetches the user's task statistics.
func (s *TaskServiceImpl) GetStatistics(ctx context.Context) result.Result[model.TaskStatistics] {
	env, err := s.remote.Statistics(ctx)
	data, e := unwrap(env, err, msgStatistics)
	if e != nil {
		return result.Failure[model.TaskStatistics](e)
	}
	if data == nil {
		return result.Failure[model.TaskStatistics](errs.EmptyPayload())
	}
	return result.Success(convert.FromAPIStatistics(*data))
}

// CreateTask creates t on the server and caches the server copy.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, t model.Task) result.Result[model.Task] {
	t = t.WithDefaults()
	if err := validate.Task(t); err != nil {
		return result.Failure[model.Task](err)
	}
	req := convert.ToCreateRequest(model.CreateFromTask(t))
	return detached(ctx, &s.inflight, func(ctx context.Context) result.Result[model.Task] {
		env, err := s.remote.CreateTask(ctx, req)
		return s.commit(ctx, env, err, msgCreateTask)
	})
}

// UpdateTask sends every mutable field of t and caches the server copy.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, t model.Task) result.Result[model.Task] {
	if t.IsNew() {
		return result.Failure[model.Task](errs.Validation("task id must be positive"))
	}
	t = t.WithDefaults()
	if err := validate.Task(t); err != nil {
		return result.Failure[model.Task](err)
	}
	return s.update(ctx, t.TaskID, model.FullPatch(t))
}

// PatchTask sends a partial update and caches the server copy.
func (s *TaskServiceImpl) PatchTask(ctx context.Context, id int64, p model.TaskPatch) result.Result[model.Task] {
	if id <= 0 {
		return result.Failure[model.Task](errs.Validation("task id must be positive"))
	}
	if err := validate.Patch(p); err != nil {
		return result.Failure[model.Task](err)
	}
	return s.update(ctx, id, p)
}

func (s *TaskServiceImpl) update(ctx context.Context, id int64, p model.TaskPatch) result.Result[model.Task] {
	req := convert.ToUpdateRequest(p)
	return detached(ctx, &s.inflight, func(ctx context.Context) result.Result[model.Task] {
		env, err := s.remote.UpdateTask(ctx, id, req)
		return s.commit(ctx, env, err, msgUpdateTask)
	})
}

// SaveTask creates pending tasks (id 0) and updates the rest.
func (s *TaskServiceImpl) SaveTask(ctx context.Context, t model.Task) result.Result[model.Task] {
	if t.IsNew() {
		return s.CreateTask(ctx, t)
	}
	return s.UpdateTask(ctx, t)
}

// DeleteTask deletes the task on the server, then drops the cached row with that id.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id int64) result.Result[struct{}] {
	if id <= 0 {
		return result.Failure[struct{}](errs.Validation("task id must be positive"))
	}
	return detached(ctx, &s.inflight, func(ctx context.Context) result.Result[struct{}] {
		env, err := s.remote.DeleteTask(ctx, id)
		if e := confirm(env, err, msgDeleteTask); e != nil {
			return result.Failure[struct{}](e)
		}
		if err := s.store.Delete(ctx, id); err != nil {
			s.log.Warn("drop cached task after delete", zap.Int64("task_id", id), zap.Error(err))
		}
		return result.Success(struct{}{})
	})
}

// ObserveTasks streams the cached tasks of the session user.
func (s *TaskServiceImpl) ObserveTasks(ctx context.Context) <-chan result.Result[[]model.Task] {
	uid, ok := session.UserIDFromCtx(ctx)
	if !ok {
		return watch.Single(result.Failure[[]model.Task](errs.NoSession()))
	}
	return watch.Observe(ctx, s.store.Subscribe, func(ctx context.Context) ([]model.Task, error) {
		return s.store.TasksForUser(ctx, uid)
	})
}

// ObserveTask streams one cached task of the session user; nil means absent.
func (s *TaskServiceImpl) ObserveTask(ctx context.Context, id int64) <-chan result.Result[*model.Task] {
	uid, ok := session.UserIDFromCtx(ctx)
	if !ok {
		return watch.Single(result.Failure[*model.Task](errs.NoSession()))
	}
	return watch.Observe(ctx, s.store.Subscribe, func(ctx context.Context) (*model.Task, error) {
		t, err := s.store.TaskByID(ctx, id)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		if t.UserID != uid {
			return nil, nil
		}
		return &t, nil
	})
}

// Wait blocks until in-flight writes finish.
func (s *TaskServiceImpl) Wait() { s.inflight.Wait() }

// commit turns a write response into a result and mirrors a confirmed task into the store.
// A store failure after a confirmed write is logged; the server copy is still returned.
func (s *TaskServiceImpl) commit(ctx context.Context, env api.Envelope[api.Task], err error, fallback string) result.Result[model.Task] {
	data, e := unwrap(env, err, fallback)
	if e != nil {
		return result.Failure[model.Task](e)
	}
	if data == nil {
		return result.Failure[model.Task](errs.EmptyPayload())
	}
	t := convert.FromAPITask(*data)
	if err := s.store.Upsert(ctx, t); err != nil {
		s.log.Warn("cache confirmed task", zap.Int64("task_id", t.TaskID), zap.Error(err))
	}
	return result.Success(t)
}

// taskList converts a list response; a missing payload is an empty list.
func taskList(env api.Envelope[[]api.Task], err error, fallback string) result.Result[[]model.Task] {
	data, e := unwrap(env, err, fallback)
	if e != nil {
		return result.Failure[[]model.Task](e)
	}
	if data == nil {
		return result.Success([]model.Task{})
	}
	return result.Success(convert.FromAPITasks(*data))
}
