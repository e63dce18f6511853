package handler

import (
	"strings"

	"projecthub/internal/tasks/models"
	"projecthub/pkg/domain"
)

// TaskRequest is the body of task create and update calls.
type TaskRequest struct {
	Titre       string       `json:"titre"`
	Description string       `json:"description"`
	ProjectID   int64        `json:"id_projet"`
	StartDate   domain.Date  `json:"start_date"`
	EndDate     domain.Date  `json:"end_date"`
	Precedence  []int64      `json:"precedence"`
	AsignTo     *int64       `json:"asign_to"`
	State       domain.State `json:"state"`
}

func (r *TaskRequest) Validate() error {
	r.Titre = strings.TrimSpace(r.Titre)
	r.Description = strings.TrimSpace(r.Description)
	if r.State == "" {
		r.State = domain.StatePending
	}
	t := r.toModel(0)
	if err := t.Validate(); err != nil {
		return err
	}
	r.Precedence = t.Precedence
	return nil
}

func (r *TaskRequest) toModel(id int64) *models.Task {
	return &models.Task{
		ID:          id,
		Titre:       r.Titre,
		Description: r.Description,
		ProjectID:   r.ProjectID,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Precedence:  r.Precedence,
		AsignTo:     r.AsignTo,
		State:       r.State,
	}
}
