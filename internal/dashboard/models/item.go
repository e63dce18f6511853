package models

import (
	"time"

	"projecthub/pkg/domain"
)

// Kind tells dashboard entries apart.
type Kind string

const (
	KindProject Kind = "project"
	KindTask    Kind = "task"
)

// Item is one row of the recent-activity summary. ProjectID is set for tasks.
type Item struct {
	Kind        Kind         `json:"type"`
	ID          int64        `json:"id"`
	Titre       string       `json:"titre"`
	Description string       `json:"description"`
	State       domain.State `json:"state"`
	StartDate   domain.Date  `json:"start_date"`
	EndDate     domain.Date  `json:"end_date"`
	ProjectID   *int64       `json:"id_projet,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
