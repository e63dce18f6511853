package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"projecthub/internal/invitations/models"
	"projecthub/internal/platform/postgres"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/platform/tx"
)

const invitationColumns = `id, email, token, project_id, status, created_at, accepted_at`

// PostgresStore persists invitations in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) tx.Executor {
	return tx.ExecutorFrom(ctx, s.db)
}

// Create inserts a pending invitation. A second invitation for the same
// (email, project) pair fails with sentinel.ErrConflict.
func (s *PostgresStore) Create(ctx context.Context, inv *models.Invitation) error {
	query := `
		INSERT INTO invitations (email, token, project_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := s.execer(ctx).QueryRowContext(ctx, query, inv.Email, inv.Token, inv.ProjectID, inv.Status).
		Scan(&inv.ID, &inv.CreatedAt)
	return postgres.MapError("insert invitation", err)
}

// ProjectTitle returns the title of the project an invitation targets.
func (s *PostgresStore) ProjectTitle(ctx context.Context, projectID int64) (string, error) {
	var title string
	err := s.execer(ctx).QueryRowContext(ctx, `SELECT titre FROM projects WHERE id = $1`, projectID).Scan(&title)
	if err != nil {
		return "", postgres.MapError("find project title", err)
	}
	return title, nil
}

func (s *PostgresStore) ListByProject(ctx context.Context, projectID int64) ([]*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE project_id = $1 ORDER BY id`
	rows, err := s.execer(ctx).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	invitations := make([]*models.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}
	return invitations, nil
}

// FindByTokenForUpdate locks the invitation row until the surrounding
// transaction ends. Outside a transaction the lock is released immediately.
func (s *PostgresStore) FindByTokenForUpdate(ctx context.Context, token string) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1 FOR UPDATE`
	inv, err := scanInvitation(s.execer(ctx).QueryRowContext(ctx, query, token))
	if err != nil {
		return nil, postgres.MapError("find invitation", err)
	}
	return inv, nil
}

// MarkAccepted moves a pending invitation to accepted. It returns
// sentinel.ErrAlreadyUsed when the invitation is no longer pending.
func (s *PostgresStore) MarkAccepted(ctx context.Context, id int64, at time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE invitations SET status = 'accepted', accepted_at = $2 WHERE id = $1 AND status = 'pending'`,
		id, at)
	if err != nil {
		return fmt.Errorf("accept invitation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("accept invitation: %w", err)
	}
	if n == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row scanner) (*models.Invitation, error) {
	var inv models.Invitation
	if err := row.Scan(&inv.ID, &inv.Email, &inv.Token, &inv.ProjectID, &inv.Status,
		&inv.CreatedAt, &inv.AcceptedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}
