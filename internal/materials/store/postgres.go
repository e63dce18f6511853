package store

import (
	"context"
	"database/sql"
	"fmt"

	"projecthub/internal/materials/models"
	"projecthub/internal/platform/postgres"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/platform/tx"
)

const materialColumns = `id, name, description, quantity, unit, project_id, created_at`

// PostgresStore persists materials in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) tx.Executor {
	return tx.ExecutorFrom(ctx, s.db)
}

func (s *PostgresStore) Create(ctx context.Context, m *models.Material) error {
	query := `
		INSERT INTO materials (name, description, quantity, unit, project_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		m.Name, m.Description, m.Quantity, m.Unit, m.ProjectID,
	).Scan(&m.ID, &m.CreatedAt)
	return postgres.MapError("insert material", err)
}

func (s *PostgresStore) Update(ctx context.Context, m *models.Material) error {
	query := `
		UPDATE materials
		SET name = $1, description = $2, quantity = $3, unit = $4, project_id = $5
		WHERE id = $6
		RETURNING created_at
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		m.Name, m.Description, m.Quantity, m.Unit, m.ProjectID, m.ID,
	).Scan(&m.CreatedAt)
	return postgres.MapError("update material", err)
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Material, error) {
	var m models.Material
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.Description, &m.Quantity, &m.Unit, &m.ProjectID, &m.CreatedAt)
	if err != nil {
		return nil, postgres.MapError("find material", err)
	}
	return &m, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Material, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `SELECT `+materialColumns+` FROM materials ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	materials := make([]*models.Material, 0)
	for rows.Next() {
		var m models.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Quantity, &m.Unit, &m.ProjectID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	return materials, nil
}
