package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"projecthub/internal/platform/postgres"
	"projecthub/internal/tasks/models"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/platform/tx"
)

const taskColumns = `id, titre, description, id_projet, start_date, end_date, precedence, asign_to, state, created_at`

// PostgresStore persists tasks in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) tx.Executor {
	return tx.ExecutorFrom(ctx, s.db)
}

func (s *PostgresStore) Create(ctx context.Context, t *models.Task) error {
	query := `
		INSERT INTO tasks (titre, description, id_projet, start_date, end_date, precedence, asign_to, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		t.Titre, t.Description, t.ProjectID, t.StartDate, t.EndDate, pq.Array(t.Precedence), t.AsignTo, t.State,
	).Scan(&t.ID, &t.CreatedAt)
	return postgres.MapError("insert task", err)
}

func (s *PostgresStore) Update(ctx context.Context, t *models.Task) error {
	query := `
		UPDATE tasks
		SET titre = $1, description = $2, id_projet = $3, start_date = $4, end_date = $5,
		    precedence = $6, asign_to = $7, state = $8
		WHERE id = $9
		RETURNING created_at
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		t.Titre, t.Description, t.ProjectID, t.StartDate, t.EndDate, pq.Array(t.Precedence), t.AsignTo, t.State, t.ID,
	).Scan(&t.CreatedAt)
	return postgres.MapError("update task", err)
}

// Delete removes the task and drops its id from the precedence lists of its
// siblings.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	_, err = s.execer(ctx).ExecContext(ctx,
		`UPDATE tasks SET precedence = array_remove(precedence, $1::BIGINT) WHERE $1::BIGINT = ANY(precedence)`, id)
	if err != nil {
		return fmt.Errorf("prune precedence: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(s.execer(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, postgres.MapError("find task", err)
	}
	return t, nil
}

// List returns every task, or only those of projectID when it is non-zero.
func (s *PostgresStore) List(ctx context.Context, projectID int64) ([]*models.Task, error) {
	if projectID == 0 {
		return s.query(ctx, "list tasks", `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	}
	return s.query(ctx, "list project tasks",
		`SELECT `+taskColumns+` FROM tasks WHERE id_projet = $1 ORDER BY id`, projectID)
}

// Recent returns the newest tasks first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC, id DESC LIMIT $1`
	return s.query(ctx, "recent tasks", query, limit)
}

func (s *PostgresStore) ProjectExists(ctx context.Context, projectID int64) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check project: %w", err)
	}
	return exists, nil
}

// CountInProject counts how many of ids are tasks of projectID.
func (s *PostgresStore) CountInProject(ctx context.Context, projectID int64, ids []int64) (int, error) {
	var n int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE id_projet = $1 AND id = ANY($2)`, projectID, pq.Array(ids)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count project tasks: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]*models.Task, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Titre, &t.Description, &t.ProjectID, &t.StartDate, &t.EndDate,
		pq.Array(&t.Precedence), &t.AsignTo, &t.State, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if t.Precedence == nil {
		t.Precedence = []int64{}
	}
	return &t, nil
}
