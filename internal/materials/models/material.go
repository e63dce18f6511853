package models

import (
	"math"
	"strings"
	"time"

	dErrors "projecthub/pkg/domain-errors"
)

// Material is a stock item, optionally reserved for a project.
type Material struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	Unit        string    `json:"unit"`
	ProjectID   *int64    `json:"project_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// MaxQuantity is the largest quantity the INTEGER column can hold.
const MaxQuantity = math.MaxInt32

// Validate trims the text fields and checks bounds.
func (m *Material) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)
	m.Unit = strings.TrimSpace(m.Unit)
	if m.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if m.Quantity < 0 {
		return dErrors.New(dErrors.CodeValidation, "quantity must not be negative")
	}
	if m.Quantity > MaxQuantity {
		return dErrors.New(dErrors.CodeValidation, "quantity must not exceed 2147483647")
	}
	if m.ProjectID != nil && *m.ProjectID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "project_id must be a positive integer")
	}
	return nil
}
