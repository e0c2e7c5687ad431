package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-timesheets-client/transport"
)

type Projects struct {
	sender Sender
}

func (p *Projects) List(ctx context.Context) ([]Project, error) {
	var projects []Project
	req := transport.Request{Method: http.MethodGet, Path: RouteProjects}
	if err := call(ctx, p.sender, req, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (p *Projects) Create(ctx context.Context, payload ProjectPayload) (*Project, error) {
	if strings.TrimSpace(payload.Name) == "" {
		return nil, invalid("project name is required")
	}
	var project Project
	req := transport.Request{Method: http.MethodPost, Path: RouteProjects}
	if err := call(ctx, p.sender, req, payload, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (p *Projects) Update(ctx context.Context, id int64, update ProjectUpdate) (*Project, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, invalid("project name can't be blank")
	}
	var project Project
	req := transport.Request{Method: http.MethodPatch, Path: fmt.Sprintf(RouteProject, id)}
	if err := call(ctx, p.sender, req, update, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
