package handler

import "projecthub/internal/materials/models"

// MaterialRequest is the body of material create and update calls.
type MaterialRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit"`
	ProjectID   *int64 `json:"project_id"`
}

func (r *MaterialRequest) Validate() error {
	m := r.toModel(0)
	if err := m.Validate(); err != nil {
		return err
	}
	r.Name, r.Description, r.Unit = m.Name, m.Description, m.Unit
	return nil
}

func (r *MaterialRequest) toModel(id int64) *models.Material {
	return &models.Material{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Quantity:    r.Quantity,
		Unit:        r.Unit,
		ProjectID:   r.ProjectID,
	}
}
