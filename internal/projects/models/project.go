package models

import (
	"time"

	"projecthub/pkg/domain"
	dErrors "projecthub/pkg/domain-errors"
)

// Project groups tasks, materials and invitations.
type Project struct {
	ID          int64        `json:"id"`
	Titre       string       `json:"titre"`
	Description string       `json:"description"`
	StartDate   domain.Date  `json:"start_date"`
	EndDate     domain.Date  `json:"end_date"`
	State       domain.State `json:"state"`
	AsignTo     *int64       `json:"asign_to"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Validate checks the invariants the store relies on.
func (p *Project) Validate() error {
	if p.Titre == "" {
		return dErrors.New(dErrors.CodeValidation, "titre is required")
	}
	if !p.State.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "state must be one of pending, in_progress, done")
	}
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate) {
		return dErrors.New(dErrors.CodeValidation, "end_date must not be before start_date")
	}
	if p.AsignTo != nil && *p.AsignTo <= 0 {
		return dErrors.New(dErrors.CodeValidation, "asign_to must be a positive user id")
	}
	return nil
}
