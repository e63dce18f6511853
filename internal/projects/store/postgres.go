package store

import (
	"context"
	"database/sql"
	"fmt"

	"projecthub/internal/platform/postgres"
	"projecthub/internal/projects/models"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/platform/tx"
)

const projectColumns = `id, titre, description, start_date, end_date, state, asign_to, created_at`

// PostgresStore persists projects in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) tx.Executor {
	return tx.ExecutorFrom(ctx, s.db)
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (titre, description, start_date, end_date, state, asign_to)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		p.Titre, p.Description, p.StartDate, p.EndDate, p.State, p.AsignTo,
	).Scan(&p.ID, &p.CreatedAt)
	return postgres.MapError("insert project", err)
}

// Update overwrites the mutable fields of an existing project.
func (s *PostgresStore) Update(ctx context.Context, p *models.Project) error {
	query := `
		UPDATE projects
		SET titre = $1, description = $2, start_date = $3, end_date = $4, state = $5, asign_to = $6
		WHERE id = $7
		RETURNING created_at
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		p.Titre, p.Description, p.StartDate, p.EndDate, p.State, p.AsignTo, p.ID,
	).Scan(&p.CreatedAt)
	return postgres.MapError("update project", err)
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(s.execer(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, postgres.MapError("find project", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY id`
	return s.query(ctx, "list projects", query)
}

// Recent returns the newest projects first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id DESC LIMIT $1`
	return s.query(ctx, "recent projects", query, limit)
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]*models.Project, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return projects, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Titre, &p.Description, &p.StartDate, &p.EndDate, &p.State, &p.AsignTo, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
