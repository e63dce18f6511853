package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"projecthub/internal/notification/models"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/platform/tx"
)

// PostgresStore is the notification outbox. Enqueue joins the caller's
// transaction so a message exists only if the invitation committed.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) tx.Executor {
	return tx.ExecutorFrom(ctx, s.db)
}

func (s *PostgresStore) Enqueue(ctx context.Context, msg *models.Message) error {
	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	query := `
		INSERT INTO notification_outbox (invitation_id, recipient, payload)
		VALUES ($1, $2, $3)
		RETURNING id, status, next_attempt_at, created_at
	`
	err = s.execer(ctx).QueryRowContext(ctx, query, msg.InvitationID, msg.Recipient, payload).
		Scan(&msg.ID, &msg.Status, &msg.NextAttemptAt, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ClaimDue leases up to limit pending messages due at now. Leased rows get
// next_attempt_at = leaseUntil so concurrent workers skip them, and rows
// locked by another claimer are skipped rather than waited on.
func (s *PostgresStore) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]*models.Message, error) {
	query := `
		UPDATE notification_outbox o
		SET next_attempt_at = $2
		FROM (
			SELECT id FROM notification_outbox
			WHERE status = 'pending' AND next_attempt_at <= $1
			ORDER BY next_attempt_at, id
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		) due
		WHERE o.id = due.id
		RETURNING o.id, o.invitation_id, o.recipient, o.payload, o.status,
		          o.attempts, o.last_error, o.next_attempt_at, o.created_at
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, now, leaseUntil, limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox entries: %w", err)
	}
	defer rows.Close()

	var msgs []*models.Message
	for rows.Next() {
		var (
			m       models.Message
			payload []byte
		)
		if err := rows.Scan(&m.ID, &m.InvitationID, &m.Recipient, &payload, &m.Status,
			&m.Attempts, &m.LastError, &m.NextAttemptAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		if err := json.Unmarshal(payload, &m.Payload); err != nil {
			return nil, fmt.Errorf("decode outbox payload %d: %w", m.ID, err)
		}
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox entries: %w", err)
	}
	return msgs, nil
}

func (s *PostgresStore) MarkSent(ctx context.Context, id int64, at time.Time) error {
	return s.update(ctx, "mark outbox entry sent",
		`UPDATE notification_outbox SET status = $3, sent_at = $2, attempts = attempts + 1, last_error = '' WHERE id = $1`,
		id, at, models.StatusSent)
}

// MarkRetry records a failed attempt and reschedules the message.
func (s *PostgresStore) MarkRetry(ctx context.Context, id int64, attempts int, lastErr string, next time.Time) error {
	return s.update(ctx, "reschedule outbox entry",
		`UPDATE notification_outbox SET attempts = $2, last_error = $3, next_attempt_at = $4 WHERE id = $1`,
		id, attempts, lastErr, next)
}

// MarkDead parks the message after its final failed attempt.
func (s *PostgresStore) MarkDead(ctx context.Context, id int64, attempts int, lastErr string) error {
	return s.update(ctx, "dead-letter outbox entry",
		`UPDATE notification_outbox SET status = $4, attempts = $2, last_error = $3 WHERE id = $1`,
		id, attempts, lastErr, models.StatusDead)
}

// FindByInvitation returns the message queued for an invitation.
func (s *PostgresStore) FindByInvitation(ctx context.Context, invitationID int64) (*models.Message, error) {
	query := `
		SELECT id, invitation_id, recipient, payload, status, attempts, last_error,
		       next_attempt_at, created_at, sent_at
		FROM notification_outbox WHERE invitation_id = $1
		ORDER BY id DESC LIMIT 1
	`
	var (
		m       models.Message
		payload []byte
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, invitationID).Scan(&m.ID, &m.InvitationID, &m.Recipient,
		&payload, &m.Status, &m.Attempts, &m.LastError, &m.NextAttemptAt, &m.CreatedAt, &m.SentAt)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find outbox entry: %w", err)
	}
	if err := json.Unmarshal(payload, &m.Payload); err != nil {
		return nil, fmt.Errorf("decode outbox payload %d: %w", m.ID, err)
	}
	return &m, nil
}

func (s *PostgresStore) update(ctx context.Context, op, query string, args ...any) error {
	res, err := s.execer(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
