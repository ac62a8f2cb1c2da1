package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/and161185/taskmaster/internal/api"
	"github.com/and161185/taskmaster/internal/convert"
	"github.com/and161185/taskmaster/internal/model"
	"github.com/and161185/taskmaster/internal/validate"
)

// intQuery reads an integer query parameter, falling back to def when absent or malformed.
func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid task id")
		return 0, false
	}
	return id, true
}

func (s *Server) listTasks(c *gin.Context) {
	pg := intQuery(c, "page", DefaultPage)
	if pg < 1 {
		pg = DefaultPage
	}
	size := intQuery(c, "pageSize", DefaultPageSize)
	switch {
	case size < 1:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	p := page(s.st.tasksWhere(userID(c), nil), pg, size)
	success(c, http.StatusOK, api.Paginated[api.Task]{
		Data:       convert.ToAPITasks(p.Items),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		TotalItems: p.TotalItems,
	})
}

func (s *Server) getTask(c *gin.Context) {
	id, valid := taskID(c)
	if !valid {
		return
	}
	t, err := s.st.task(userID(c), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	success(c, http.StatusOK, convert.ToAPITask(t))
}

func (s *Server) createTask(c *gin.Context) {
	var req api.CreateTaskRequest
	if !bind(c, &req) {
		return
	}
	in, valid := convert.FromCreateRequest(req)
	if !valid {
		badRequest(c, "invalid priority or category")
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if len(in.Title) < 3 {
		badRequest(c, "title has invalid length")
		return
	}
	t := s.st.createTask(userID(c), in, s.stamp())
	success(c, http.StatusCreated, convert.ToAPITask(t))
}

func (s *Server) updateTask(c *gin.Context) {
	id, valid := taskID(c)
	if !valid {
		return
	}
	var req api.UpdateTaskRequest
	if !bind(c, &req) {
		return
	}
	p, valid := convert.FromUpdateRequest(req)
	if !valid {
		badRequest(c, "invalid priority, status or category")
		return
	}
	if err := validate.Patch(p); err != nil {
		badRequest(c, err.Error())
		return
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}
	t, err := s.st.updateTask(userID(c), id, p, s.stamp())
	if err != nil {
		s.failErr(c, err)
		return
	}
	success(c, http.StatusOK, convert.ToAPITask(t))
}

func (s *Server) deleteTask(c *gin.Context) {
	id, valid := taskID(c)
	if !valid {
		return
	}
	if err := s.st.deleteTask(userID(c), id); err != nil {
		s.failErr(c, err)
		return
	}
	done(c, "Task deleted")
}

func (s *Server) filtered(c *gin.Context, keep func(model.Task) bool) {
	success(c, http.StatusOK, convert.ToAPITasks(s.st.tasksWhere(userID(c), keep)))
}

func (s *Server) tasksByStatus(c *gin.Context) {
	v, valid := model.ParseStatus(c.Param("value"))
	if !valid {
		badRequest(c, "invalid status")
		return
	}
	s.filtered(c, func(t model.Task) bool { return t.Status == v })
}

func (s *Server) tasksByCategory(c *gin.Context) {
	v, valid := model.ParseCategory(c.Param("value"))
	if !valid {
		badRequest(c, "invalid category")
		return
	}
	s.filtered(c, func(t model.Task) bool { return t.Category == v })
}

func (s *Server) tasksByPriority(c *gin.Context) {
	v, valid := model.ParsePriority(c.Param("value"))
	if !valid {
		badRequest(c, "invalid priority")
		return
	}
	s.filtered(c, func(t model.Task) bool { return t.Priority == v })
}

// searchTasks matches q case-insensitively against title and description.
func (s *Server) searchTasks(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if q == "" {
		badRequest(c, "search query must not be empty")
		return
	}
	s.filtered(c, func(t model.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q)
	})
}

// tasksInRange lists tasks due within [startDate, endDate], both epoch millis.
func (s *Server) tasksInRange(c *gin.Context) {
	start, err1 := strconv.ParseInt(c.Query("startDate"), 10, 64)
	end, err2 := strconv.ParseInt(c.Query("endDate"), 10, 64)
	if err1 != nil || err2 != nil {
		badRequest(c, "startDate and endDate are required")
		return
	}
	if start > end {
		badRequest(c, "start date must not be after end date")
		return
	}
	from, to := convert.FromMillis(start), convert.FromMillis(end)
	s.filtered(c, func(t model.Task) bool {
		return t.DueDate != nil && !t.DueDate.Before(from) && !t.DueDate.After(to)
	})
}

func (s *Server) statistics(c *gin.Context) {
	st := statistics(s.st.tasksWhere(userID(c), nil), s.now())
	success(c, http.StatusOK, convert.ToAPIStatistics(st))
}
