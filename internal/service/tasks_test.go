package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/taskmaster/internal/api"
	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
	"github.com/and161185/taskmaster/internal/result"
	"github.com/and161185/taskmaster/internal/session"
)

func wireTask(id int64, title string) api.Task {
	return api.Task{
		TaskID: id, UserID: "u1", Title: title,
		Priority: "MEDIUM", Status: "PENDING", Category: "PERSONAL",
		CreatedAt: 1_700_000_000_000, UpdatedAt: 1_700_000_000_000,
	}
}

func newTasks(r *fakeRemote, st *fakeTaskStore) *TaskServiceImpl {
	return NewTaskService(r, st, nil)
}

func TestSaveTask_DispatchesOnID(t *testing.T) {
	r := &fakeRemote{create: ok(wireTask(1, "Buy milk")), update: ok(wireTask(5, "Buy milk"))}
	s := newTasks(r, newFakeTaskStore())
	ctx := context.Background()

	res := s.SaveTask(ctx, model.NewTask("u1", "Buy milk"))
	require.True(t, res.IsSuccess())
	require.Equal(t, []string{"CreateTask"}, r.called())

	upd := model.NewTask("u1", "Buy milk")
	upd.TaskID = 5
	res = s.SaveTask(ctx, upd)
	require.True(t, res.IsSuccess())
	require.Equal(t, []string{"CreateTask", "UpdateTask"}, r.called())
}

func TestCreateTask_EmptyPayloadWritesNothing(t *testing.T) {
	for name, call := range map[string]func(*TaskServiceImpl) result.Result[model.Task]{
		"create": func(s *TaskServiceImpl) result.Result[model.Task] {
			return s.CreateTask(context.Background(), model.NewTask("u1", "Buy milk"))
		},
		"update": func(s *TaskServiceImpl) result.Result[model.Task] {
			tk := model.NewTask("u1", "Buy milk")
			tk.TaskID = 3
			return s.UpdateTask(context.Background(), tk)
		},
	} {
		t.Run(name, func(t *testing.T) {
			st := newFakeTaskStore()
			s := newTasks(&fakeRemote{create: empty[api.Task](), update: empty[api.Task]()}, st)

			res := call(s)
			require.True(t, res.IsError())
			require.Equal(t, "No data returned", res.Message())
			require.Equal(t, errs.KindEmptyPayload, res.Kind())

			_, writes := st.snapshot()
			require.Zero(t, writes)
		})
	}
}

func TestCreateTask_CachesServerCopy(t *testing.T) {
	st := newFakeTaskStore()
	s := newTasks(&fakeRemote{create: ok(wireTask(42, "Buy milk"))}, st)

	res := s.CreateTask(context.Background(), model.NewTask("u1", "Buy milk"))
	got, okv := res.Value()
	require.True(t, okv)
	require.Equal(t, int64(42), got.TaskID)

	res = s.CreateTask(context.Background(), model.NewTask("u1", "Buy milk"))
	require.True(t, res.IsSuccess())

	rows, _ := st.snapshot()
	require.Len(t, rows, 1)
	require.Equal(t, got, rows[42])
}

func TestCreateTask_SendsDefaults(t *testing.T) {
	r := &fakeRemote{create: ok(wireTask(1, "Buy milk"))}
	s := newTasks(r, newFakeTaskStore())

	require.True(t, s.CreateTask(context.Background(), model.Task{Title: "Buy milk"}).IsSuccess())
	require.Equal(t, "MEDIUM", r.lastCreate.Priority)
	require.Equal(t, "PERSONAL", r.lastCreate.Category)
}

func TestCreateTask_RejectionLeavesStoreAlone(t *testing.T) {
	st := newFakeTaskStore()
	s := newTasks(&fakeRemote{create: rejected[api.Task]("quota exceeded")}, st)

	res := s.CreateTask(context.Background(), model.NewTask("u1", "Buy milk"))
	require.True(t, res.IsError())
	require.Equal(t, "quota exceeded", res.Message())
	require.Equal(t, errs.KindRejected, res.Kind())

	_, writes := st.snapshot()
	require.Zero(t, writes)
}

func TestCreateTask_RejectionFallbacks(t *testing.T) {
	detail := "limit reached"
	s := newTasks(&fakeRemote{create: api.Envelope[api.Task]{Error: &detail}}, newFakeTaskStore())
	require.Equal(t, "limit reached", s.CreateTask(context.Background(), model.NewTask("u1", "Buy milk")).Message())

	s = newTasks(&fakeRemote{create: api.Envelope[api.Task]{}}, newFakeTaskStore())
	require.Equal(t, "Failed to create task", s.CreateTask(context.Background(), model.NewTask("u1", "Buy milk")).Message())
}

func TestCreateTask_ValidationBeforeNetwork(t *testing.T) {
	r := &fakeRemote{}
	s := newTasks(r, newFakeTaskStore())

	res := s.CreateTask(context.Background(), model.NewTask("u1", ""))
	require.Equal(t, errs.KindValidation, res.Kind())
	require.Equal(t, "title must not be empty", res.Message())

	res = s.CreateTask(context.Background(), model.NewTask("u1", "ab"))
	require.Equal(t, errs.KindValidation, res.Kind())

	res = s.CreateTask(context.Background(), model.NewTask("u1", "   "))
	require.Equal(t, "title must not be empty", res.Message())

	res = s.CreateTask(context.Background(), model.NewTask("u1", " a "))
	require.Equal(t, "title must be between 3 and 100 characters", res.Message())

	blank := "   "
	res = s.PatchTask(context.Background(), 1, model.TaskPatch{Title: &blank})
	require.Equal(t, errs.KindValidation, res.Kind())

	upd := model.NewTask("u1", " a ")
	upd.TaskID = 1
	require.Equal(t, errs.KindValidation, s.UpdateTask(context.Background(), upd).Kind())
	require.Empty(t, r.called())
}

func TestCreateTask_TransportError(t *testing.T) {
	st := newFakeTaskStore()
	s := newTasks(&fakeRemote{err: errDial}, st)

	res := s.CreateTask(context.Background(), model.NewTask("u1", "Buy milk"))
	require.Equal(t, errs.KindTransport, res.Kind())
	require.Equal(t, errDial.Error(), res.Message())
	require.ErrorIs(t, res.Err(), errDial)

	_, writes := st.snapshot()
	require.Zero(t, writes)
}

func TestCreateTask_CacheFailureStillSucceeds(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	st := newFakeTaskStore()
	st.upsertErr = errors.New("disk full")
	s := NewTaskService(&fakeRemote{create: ok(wireTask(9, "Buy milk"))}, st, zap.New(core))

	res := s.CreateTask(context.Background(), model.NewTask("u1", "Buy milk"))
	require.True(t, res.IsSuccess())
	require.Equal(t, 1, logs.FilterMessage("cache confirmed task").Len())
}

func TestCreateTask_OutlivesCallerCancellation(t *testing.T) {
	r := &fakeRemote{create: ok(wireTask(11, "Buy milk")), block: make(chan struct{})}
	st := newFakeTaskStore()
	s := newTasks(r, st)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan result.Result[model.Task], 1)
	go func() { out <- s.CreateTask(ctx, model.NewTask("u1", "Buy milk")) }()

	require.Eventually(t, func() bool { return len(r.called()) == 1 }, time.Second, time.Millisecond)
	cancel()

	res := <-out
	require.True(t, res.IsError())
	require.ErrorIs(t, res.Err(), context.Canceled)

	close(r.block)
	s.Wait()

	rows, _ := st.snapshot()
	require.Contains(t, rows, int64(11))
}

func TestCreateTask_CanceledBeforeDispatch(t *testing.T) {
	r := &fakeRemote{create: ok(wireTask(1, "Buy milk"))}
	s := newTasks(r, newFakeTaskStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := s.CreateTask(ctx, model.NewTask("u1", "Buy milk"))
	require.ErrorIs(t, res.Err(), context.Canceled)
	require.Empty(t, r.called())
}

func TestPatchTask(t *testing.T) {
	r := &fakeRemote{update: ok(wireTask(4, "Buy milk"))}
	st := newFakeTaskStore()
	s := newTasks(r, st)

	done := true
	res := s.PatchTask(context.Background(), 4, model.TaskPatch{IsCompleted: &done})
	require.True(t, res.IsSuccess())
	require.NotNil(t, r.lastUpdate.IsCompleted)
	require.True(t, *r.lastUpdate.IsCompleted)
	require.Nil(t, r.lastUpdate.Title)

	res = s.PatchTask(context.Background(), 4, model.TaskPatch{})
	require.Equal(t, "nothing to update", res.Message())

	res = s.PatchTask(context.Background(), 0, model.TaskPatch{IsCompleted: &done})
	require.Equal(t, errs.KindValidation, res.Kind())
}

func TestDeleteTask(t *testing.T) {
	seed := model.NewTask("u1", "Buy milk")
	seed.TaskID = 7

	t.Run("success removes the confirmed id", func(t *testing.T) {
		st := newFakeTaskStore(seed)
		s := newTasks(&fakeRemote{del: api.Envelope[api.Unit]{Success: true}}, st)

		require.True(t, s.DeleteTask(context.Background(), 7).IsSuccess())
		rows, _ := st.snapshot()
		require.NotContains(t, rows, int64(7))
	})

	t.Run("rejection keeps the row", func(t *testing.T) {
		st := newFakeTaskStore(seed)
		s := newTasks(&fakeRemote{del: rejected[api.Unit]("forbidden")}, st)

		res := s.DeleteTask(context.Background(), 7)
		require.Equal(t, "forbidden", res.Message())
		rows, writes := st.snapshot()
		require.Contains(t, rows, int64(7))
		require.Zero(t, writes)
	})

	t.Run("transport fault keeps the row", func(t *testing.T) {
		st := newFakeTaskStore(seed)
		s := newTasks(&fakeRemote{err: errDial}, st)

		res := s.DeleteTask(context.Background(), 7)
		require.Equal(t, errs.KindTransport, res.Kind())
		rows, _ := st.snapshot()
		require.Contains(t, rows, int64(7))
	})

	t.Run("rejection without text uses fallback", func(t *testing.T) {
		s := newTasks(&fakeRemote{}, newFakeTaskStore(seed))
		require.Equal(t, "Failed to delete task", s.DeleteTask(context.Background(), 7).Message())
	})
}

func TestReads_DoNotTouchStore(t *testing.T) {
	r := &fakeRemote{
		list: ok(api.Paginated[api.Task]{Data: []api.Task{wireTask(1, "one"), wireTask(2, "two")}, Page: 1, PageSize: 20, TotalPages: 1, TotalItems: 2}),
		get:  ok(wireTask(1, "one")),
	}
	st := newFakeTaskStore()
	s := newTasks(r, st)
	ctx := context.Background()

	page, okv := s.GetTasks(ctx, 0, 0).Value()
	require.True(t, okv)
	require.Len(t, page.Items, 2)
	require.Equal(t, 2, page.TotalItems)

	require.True(t, s.GetTask(ctx, 1).IsSuccess())

	_, writes := st.snapshot()
	require.Zero(t, writes)
}

func TestReads_NilPayloads(t *testing.T) {
	s := newTasks(&fakeRemote{
		list:     empty[api.Paginated[api.Task]](),
		get:      empty[api.Task](),
		filtered: empty[[]api.Task](),
		stats:    empty[api.TaskStatistics](),
	}, newFakeTaskStore())
	ctx := context.Background()

	page, okv := s.GetTasks(ctx, 1, 20).Value()
	require.True(t, okv)
	require.Empty(t, page.Items)

	list, okv := s.SearchTasks(ctx, "milk").Value()
	require.True(t, okv)
	require.NotNil(t, list)
	require.Empty(t, list)

	require.Equal(t, errs.KindEmptyPayload, s.GetTask(ctx, 1).Kind())
	require.Equal(t, errs.KindEmptyPayload, s.GetStatistics(ctx).Kind())
}

func TestReads_Fallbacks(t *testing.T) {
	s := newTasks(&fakeRemote{}, newFakeTaskStore())
	ctx := context.Background()

	require.Equal(t, "Failed to fetch tasks", s.GetTasks(ctx, 1, 20).Message())
	require.Equal(t, "Failed to fetch task", s.GetTask(ctx, 1).Message())
	require.Equal(t, "Failed to fetch tasks by status", s.GetTasksByStatus(ctx, model.StatusPending).Message())
	require.Equal(t, "Failed to fetch tasks by category", s.GetTasksByCategory(ctx, model.CategoryWork).Message())
	require.Equal(t, "Failed to fetch tasks by priority", s.GetTasksByPriority(ctx, model.PriorityHigh).Message())
	require.Equal(t, "Failed to search tasks", s.SearchTasks(ctx, "x").Message())
	now := time.Now()
	require.Equal(t, "Failed to fetch tasks by date range", s.GetTasksByDateRange(ctx, now, now).Message())
	require.Equal(t, "Failed to fetch task statistics", s.GetStatistics(ctx).Message())
}

func TestFilters_UseLowerCasePathValues(t *testing.T) {
	r := &fakeRemote{filtered: ok([]api.Task{wireTask(1, "one")})}
	s := newTasks(r, newFakeTaskStore())
	ctx := context.Background()

	require.True(t, s.GetTasksByStatus(ctx, model.StatusInProgress).IsSuccess())
	require.Equal(t, "status/in_progress", r.lastPath)

	require.True(t, s.GetTasksByCategory(ctx, model.CategoryHealth).IsSuccess())
	require.Equal(t, "category/health", r.lastPath)

	require.True(t, s.GetTasksByPriority(ctx, model.PriorityUrgent).IsSuccess())
	require.Equal(t, "priority/urgent", r.lastPath)

	require.Equal(t, errs.KindValidation, s.GetTasksByStatus(ctx, "DONE").Kind())
	require.Equal(t, errs.KindValidation, s.SearchTasks(ctx, "  ").Kind())
	require.Equal(t, errs.KindValidation, s.GetTasksByDateRange(ctx, time.Now(), time.Now().Add(-time.Hour)).Kind())
}

func TestTransportErrorWithoutText(t *testing.T) {
	s := newTasks(&fakeRemote{err: errors.New("")}, newFakeTaskStore())
	require.Equal(t, "Network error", s.GetTasks(context.Background(), 1, 20).Message())
}

func recv[T any](t *testing.T, ch <-chan result.Result[T]) result.Result[T] {
	t.Helper()
	select {
	case r, open := <-ch:
		require.True(t, open, "stream closed")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for emission")
	}
	panic("unreachable")
}

func quiet[T any](t *testing.T, ch <-chan result.Result[T]) {
	t.Helper()
	select {
	case r := <-ch:
		t.Fatalf("unexpected emission: %v", r.State())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestObserveTasks_CacheOnly(t *testing.T) {
	seed := model.NewTask("u1", "cached")
	seed.TaskID = 1
	other := model.NewTask("u2", "not mine")
	other.TaskID = 2
	st := newFakeTaskStore(seed, other)
	r := &fakeRemote{
		list:   ok(api.Paginated[api.Task]{Data: []api.Task{wireTask(1, "fresh"), wireTask(3, "server only")}}),
		create: ok(wireTask(4, "Buy milk")),
	}
	s := newTasks(r, st)

	ctx, cancel := context.WithCancel(session.WithUserID(context.Background(), "u1"))
	defer cancel()
	ch := s.ObserveTasks(ctx)

	require.True(t, recv(t, ch).IsLoading())
	first, okv := recv(t, ch).Value()
	require.True(t, okv)
	require.Len(t, first, 1)
	require.Equal(t, "cached", first[0].Title)

	require.True(t, s.GetTasks(ctx, 1, 20).IsSuccess())
	quiet(t, ch)

	require.True(t, s.CreateTask(ctx, model.NewTask("u1", "Buy milk")).IsSuccess())
	next, okv := recv(t, ch).Value()
	require.True(t, okv)
	require.Len(t, next, 2)
}

func TestObserveTasks_NoSession(t *testing.T) {
	s := newTasks(&fakeRemote{}, newFakeTaskStore())
	ch := s.ObserveTasks(context.Background())

	r := <-ch
	require.Equal(t, errs.KindNoSession, r.Kind())
	_, open := <-ch
	require.False(t, open)
}

func TestObserveTask(t *testing.T) {
	seed := model.NewTask("u1", "cached")
	seed.TaskID = 1
	st := newFakeTaskStore(seed)
	s := newTasks(&fakeRemote{del: api.Envelope[api.Unit]{Success: true}}, st)

	ctx, cancel := context.WithCancel(session.WithUserID(context.Background(), "u1"))
	defer cancel()
	ch := s.ObserveTask(ctx, 1)

	recv(t, ch)
	got, okv := recv(t, ch).Value()
	require.True(t, okv)
	require.NotNil(t, got)
	require.Equal(t, "cached", got.Title)

	require.True(t, s.DeleteTask(ctx, 1).IsSuccess())
	got, okv = recv(t, ch).Value()
	require.True(t, okv)
	require.Nil(t, got)
}
