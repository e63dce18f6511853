package store

import (
	"context"
	"database/sql"
	"fmt"

	"projecthub/internal/platform/postgres"
	"projecthub/internal/users/models"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/platform/tx"
)

const userColumns = `id, nom, prenom, telephone, mail, password_hash, role, created_at`

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) tx.Executor {
	return tx.ExecutorFrom(ctx, s.db)
}

// Ping checks that a pooled connection can reach the database.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create inserts u and fills in its ID and CreatedAt. A mail that differs
// only by case from an existing one is a conflict.
func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (nom, prenom, telephone, mail, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		u.Nom, u.Prenom, u.Telephone, u.Mail, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	return postgres.MapError("insert user", err)
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.findOne(ctx, "find user by id", query, id)
}

// FindByMail matches case-insensitively.
func (s *PostgresStore) FindByMail(ctx context.Context, mail string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(mail) = LOWER($1)`
	return s.findOne(ctx, "find user by mail", query, mail)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	res, err := s.execer(ctx).ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, op, query string, arg any) (*models.User, error) {
	u, err := scanUser(s.execer(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, postgres.MapError(op, err)
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Nom, &u.Prenom, &u.Telephone, &u.Mail, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
