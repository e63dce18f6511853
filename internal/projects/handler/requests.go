package handler

import (
	"strings"

	"projecthub/internal/projects/models"
	"projecthub/pkg/domain"
)

// ProjectRequest is the body of project create and update calls.
type ProjectRequest struct {
	Titre       string       `json:"titre"`
	Description string       `json:"description"`
	StartDate   domain.Date  `json:"start_date"`
	EndDate     domain.Date  `json:"end_date"`
	State       domain.State `json:"state"`
	AsignTo     *int64       `json:"asign_to"`
}

func (r *ProjectRequest) Validate() error {
	r.Titre = strings.TrimSpace(r.Titre)
	r.Description = strings.TrimSpace(r.Description)
	if r.State == "" {
		r.State = domain.StatePending
	}
	p := r.toModel(0)
	return p.Validate()
}

func (r *ProjectRequest) toModel(id int64) *models.Project {
	return &models.Project{
		ID:          id,
		Titre:       r.Titre,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		State:       r.State,
		AsignTo:     r.AsignTo,
	}
}
