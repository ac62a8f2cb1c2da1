package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/and161185/taskmaster/internal/api"
	"github.com/and161185/taskmaster/internal/model"
)

func idPath(id int64) string { return strconv.FormatInt(id, 10) }

// ListTasks returns one page of the caller's tasks.
func (c *Client) ListTasks(ctx context.Context, page, pageSize int) (api.Envelope[api.Paginated[api.Task]], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	return call[api.Paginated[api.Task]](ctx, c, http.MethodGet, []string{api.PathTasks}, q, nil)
}

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, id int64) (api.Envelope[api.Task], error) {
	return call[api.Task](ctx, c, http.MethodGet, []string{api.PathTasks, idPath(id)}, nil, nil)
}

// CreateTask creates a task; the server assigns its id.
func (c *Client) CreateTask(ctx context.Context, req api.CreateTaskRequest) (api.Envelope[api.Task], error) {
	return call[api.Task](ctx, c, http.MethodPost, []string{api.PathTasks}, nil, req)
}

// UpdateTask applies a full or partial update.
func (c *Client) UpdateTask(ctx context.Context, id int64, req api.UpdateTaskRequest) (api.Envelope[api.Task], error) {
	return call[api.Task](ctx, c, http.MethodPut, []string{api.PathTasks, idPath(id)}, nil, req)
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) (api.Envelope[api.Unit], error) {
	return call[api.Unit](ctx, c, http.MethodDelete, []string{api.PathTasks, idPath(id)}, nil, nil)
}

// ListTasksByFilter lists tasks by status, category or priority; value is the lower-case path form.
func (c *Client) ListTasksByFilter(ctx context.Context, kind model.FilterKind, value string) (api.Envelope[[]api.Task], error) {
	return call[[]api.Task](ctx, c, http.MethodGet, []string{api.PathTasks, string(kind), value}, nil, nil)
}

// SearchTasks runs a free-text search.
func (c *Client) SearchTasks(ctx context.Context, query string) (api.Envelope[[]api.Task], error) {
	q := url.Values{}
	q.Set("q", query)
	return call[[]api.Task](ctx, c, http.MethodGet, []string{api.PathTaskSearch}, q, nil)
}

// ListTasksInRange lists tasks due within [start, end] (epoch millis).
func (c *Client) ListTasksInRange(ctx context.Context, start, end int64) (api.Envelope[[]api.Task], error) {
	q := url.Values{}
	q.Set("startDate", strconv.FormatInt(start, 10))
	q.Set("endDate", strconv.FormatInt(end, 10))
	return call[[]api.Task](ctx, c, http.MethodGet, []string{api.PathTaskDateRange}, q, nil)
}

// Statistics returns the caller's task statistics.
func (c *Client) Statistics(ctx context.Context) (api.Envelope[api.TaskStatistics], error) {
	return call[api.TaskStatistics](ctx, c, http.MethodGet, []string{api.PathTaskStatistics}, nil, nil)
}
