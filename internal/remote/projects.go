package remote

import (
	"context"
	"net/http"

	"github.com/and161185/taskmaster/internal/api"
)

// ListProjects returns the caller's projects.
func (c *Client) ListProjects(ctx context.Context) (api.Envelope[[]api.Project], error) {
	return call[[]api.Project](ctx, c, http.MethodGet, []string{api.PathProjects}, nil, nil)
}

// GetProject returns one project.
func (c *Client) GetProject(ctx context.Context, id string) (api.Envelope[api.Project], error) {
	return call[api.Project](ctx, c, http.MethodGet, []string{api.PathProjects, id}, nil, nil)
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, p api.Project) (api.Envelope[api.Project], error) {
	return call[api.Project](ctx, c, http.MethodPost, []string{api.PathProjects}, nil, p)
}

// UpdateProject replaces a project.
func (c *Client) UpdateProject(ctx context.Context, id string, p api.Project) (api.Envelope[api.Project], error) {
	return call[api.Project](ctx, c, http.MethodPut, []string{api.PathProjects, id}, nil, p)
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) (api.Envelope[api.Unit], error) {
	return call[api.Unit](ctx, c, http.MethodDelete, []string{api.PathProjects, id}, nil, nil)
}
