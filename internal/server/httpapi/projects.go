package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/and161185/taskmaster/internal/api"
	"github.com/and161185/taskmaster/internal/convert"
	"github.com/and161185/taskmaster/internal/model"
)

func projectID(c *gin.Context) (string, bool) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid project id")
		return "", false
	}
	return id.String(), true
}

func (s *Server) listProjects(c *gin.Context) {
	ps := s.st.projectsOf(userID(c))
	out := make([]api.Project, 0, len(ps))
	for _, p := range ps {
		out = append(out, convert.ToAPIProject(p))
	}
	success(c, http.StatusOK, out)
}

func (s *Server) getProject(c *gin.Context) {
	id, valid := projectID(c)
	if !valid {
		return
	}
	p, err := s.st.project(userID(c), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	success(c, http.StatusOK, convert.ToAPIProject(p))
}

func (s *Server) createProject(c *gin.Context) {
	var req api.Project
	if !bind(c, &req) {
		return
	}
	id, err := uuid.NewV4()
	if err != nil {
		s.failErr(c, err)
		return
	}
	now := s.stamp()
	p := convert.FromAPIProject(req)
	p.ProjectID = id.String()
	p.UserID = userID(c)
	p.CreatedAt, p.UpdatedAt = now, now
	s.st.putProject(p)
	success(c, http.StatusCreated, convert.ToAPIProject(p))
}

func (s *Server) updateProject(c *gin.Context) {
	id, valid := projectID(c)
	if !valid {
		return
	}
	var req api.Project
	if !bind(c, &req) {
		return
	}
	now := s.stamp()
	p, err := s.st.updateProject(userID(c), id, func(p *model.Project) {
		p.Name = req.Name
		if req.Description != nil {
			p.Description = *req.Description
		}
		p.UpdatedAt = now
	})
	if err != nil {
		s.failErr(c, err)
		return
	}
	success(c, http.StatusOK, convert.ToAPIProject(p))
}

func (s *Server) deleteProject(c *gin.Context) {
	id, valid := projectID(c)
	if !valid {
		return
	}
	if err := s.st.deleteProject(userID(c), id); err != nil {
		s.failErr(c, err)
		return
	}
	done(c, "Project deleted")
}
