package models

import (
	"time"

	"projecthub/pkg/domain"
	dErrors "projecthub/pkg/domain-errors"
)

// Task is a unit of work inside a project. Precedence lists the ids of tasks
// of the same project that must come first.
type Task struct {
	ID          int64        `json:"id"`
	Titre       string       `json:"titre"`
	Description string       `json:"description"`
	ProjectID   int64        `json:"id_projet"`
	StartDate   domain.Date  `json:"start_date"`
	EndDate     domain.Date  `json:"end_date"`
	Precedence  []int64      `json:"precedence"`
	AsignTo     *int64       `json:"asign_to"`
	State       domain.State `json:"state"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Validate checks field-level invariants and normalizes Precedence to a
// non-nil slice. Membership of precedence ids is checked by the service.
func (t *Task) Validate() error {
	if t.Titre == "" {
		return dErrors.New(dErrors.CodeValidation, "titre is required")
	}
	if t.ProjectID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "id_projet is required")
	}
	if !t.State.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "state must be one of pending, in_progress, done")
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
		return dErrors.New(dErrors.CodeValidation, "end_date must not be before start_date")
	}
	if t.AsignTo != nil && *t.AsignTo <= 0 {
		return dErrors.New(dErrors.CodeValidation, "asign_to must be a positive user id")
	}

	if t.Precedence == nil {
		t.Precedence = []int64{}
	}
	seen := make(map[int64]struct{}, len(t.Precedence))
	for _, id := range t.Precedence {
		if id <= 0 {
			return dErrors.New(dErrors.CodeValidation, "precedence ids must be positive")
		}
		if t.ID != 0 && id == t.ID {
			return dErrors.New(dErrors.CodeValidation, "a task cannot precede itself")
		}
		if _, dup := seen[id]; dup {
			return dErrors.New(dErrors.CodeValidation, "precedence ids must be unique")
		}
		seen[id] = struct{}{}
	}
	return nil
}
