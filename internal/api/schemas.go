package api

import (
	"time"

	"github.com/3menions-ctrl/genesis-director-sub010/internal/editor"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/store"
)

type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	UptimeS      int64  `json:"uptime_s"`
	OpenProjects int    `json:"open_projects"`
}

type CreateProjectRequest struct {
	Name string `json:"name" validate:"max=200"`
}

type RenameProjectRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type ProjectResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ClipCount int     `json:"clip_count"`
	DurationS float64 `json:"duration_s"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type HistoryResponse struct {
	Applied bool            `json:"applied"`
	Project editor.Snapshot `json:"project"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ProjectToResponse(p *store.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		ClipCount: p.ClipCount,
		DurationS: p.DurationS,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}
