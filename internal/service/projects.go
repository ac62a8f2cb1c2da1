package service

import (
	"context"
	"strings"

	"github.com/and161185/taskmaster/internal/api"
	"github.com/and161185/taskmaster/internal/convert"
	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
	"github.com/and161185/taskmaster/internal/result"
	"github.com/and161185/taskmaster/internal/validate"
)

// ProjectService reads and writes projects. Nothing is cached.
type ProjectService interface {
	ListProjects(ctx context.Context) result.Result[[]model.Project]
	GetProject(ctx context.Context, id string) result.Result[model.Project]
	CreateProject(ctx context.Context, p model.Project) result.Result[model.Project]
	UpdateProject(ctx context.Context, p model.Project) result.Result[model.Project]
	DeleteProject(ctx context.Context, id string) result.Result[struct{}]
}

// ProjectServiceImpl implements ProjectService.
type ProjectServiceImpl struct {
	remote ProjectRemote
}

var _ ProjectService = (*ProjectServiceImpl)(nil)

// NewProjectService constructs ProjectService.
func NewProjectService(remote ProjectRemote) *ProjectServiceImpl {
	return &ProjectServiceImpl{remote: remote}
}

func (s *ProjectServiceImpl) ListProjects(ctx context.Context) result.Result[[]model.Project] {
	env, err := s.remote.ListProjects(ctx)
	data, e := unwrap(env, err, msgProjects)
	if e != nil {
		return result.Failure[[]model.Project](e)
	}
	if data == nil {
		return result.Success([]model.Project{})
	}
	return result.Success(convert.FromAPIProjects(*data))
}

func (s *ProjectServiceImpl) GetProject(ctx context.Context, id string) result.Result[model.Project] {
	if strings.TrimSpace(id) == "" {
		return result.Failure[model.Project](errs.Validation("project id must not be empty"))
	}
	env, err := s.remote.GetProject(ctx, id)
	return project(unwrap(env, err, msgProject))
}

func (s *ProjectServiceImpl) CreateProject(ctx context.Context, p model.Project) result.Result[model.Project] {
	if err := validate.Struct(p); err != nil {
		return result.Failure[model.Project](err)
	}
	env, err := s.remote.CreateProject(ctx, convert.ToAPIProject(p))
	return project(unwrap(env, err, msgCreateProject))
}

func (s *ProjectServiceImpl) UpdateProject(ctx context.Context, p model.Project) result.Result[model.Project] {
	if strings.TrimSpace(p.ProjectID) == "" {
		return result.Failure[model.Project](errs.Validation("project id must not be empty"))
	}
	if err := validate.Struct(p); err != nil {
		return result.Failure[model.Project](err)
	}
	env, err := s.remote.UpdateProject(ctx, p.ProjectID, convert.ToAPIProject(p))
	return project(unwrap(env, err, msgUpdateProject))
}

func (s *ProjectServiceImpl) DeleteProject(ctx context.Context, id string) result.Result[struct{}] {
	if strings.TrimSpace(id) == "" {
		return result.Failure[struct{}](errs.Validation("project id must not be empty"))
	}
	env, err := s.remote.DeleteProject(ctx, id)
	return done(confirm(env, err, msgDeleteProject))
}

func project(data *api.Project, e *errs.Error) result.Result[model.Project] {
	if e != nil {
		return result.Failure[model.Project](e)
	}
	if data == nil {
		return result.Failure[model.Project](errs.EmptyPayload())
	}
	return result.Success(convert.FromAPIProject(*data))
}
