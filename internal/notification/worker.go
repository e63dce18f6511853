package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"projecthub/internal/notification/models"
	"projecthub/internal/platform/config"
	"projecthub/internal/platform/metrics"
	"projecthub/pkg/platform/circuit"
)

const (
	leaseMargin = time.Minute
	// sendBudget covers one SMTP exchange: the 5s dial plus the transfer.
	sendBudget = 10 * time.Second
	maxBackoff = time.Hour
)

// LeaseFor is how long a claim of batch messages stays invisible to other
// workers. It grows with the batch so a slow SMTP server cannot let the
// lease lapse while this worker is still sending.
func LeaseFor(batch int) time.Duration {
	return leaseMargin + time.Duration(batch)*sendBudget
}

// Outbox is the persistence the worker drains.
type Outbox interface {
	ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]*models.Message, error)
	MarkSent(ctx context.Context, id int64, at time.Time) error
	MarkRetry(ctx context.Context, id int64, attempts int, lastErr string, next time.Time) error
	MarkDead(ctx context.Context, id int64, attempts int, lastErr string) error
}

// Sender delivers one invitation mail.
type Sender interface {
	SendInvitation(ctx context.Context, recipient string, payload models.InvitationPayload) error
}

// Worker polls the outbox and delivers due invitation mails. Failed sends
// are retried with exponential backoff and dead-lettered after MaxAttempts.
// While the SMTP breaker is open each poll sends a single message.
type Worker struct {
	outbox  Outbox
	sender  Sender
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
	cfg     config.Notify
	now     func() time.Time
}

type WorkerOption func(*Worker)

func WithLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) WorkerOption {
	return func(w *Worker) {
		w.breaker = b
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		w.now = now
	}
}

func NewWorker(outbox Outbox, sender Sender, cfg config.Notify, opts ...WorkerOption) *Worker {
	w := &Worker{
		outbox: outbox,
		sender: sender,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.breaker == nil {
		w.breaker = circuit.New("smtp")
	}
	if w.cfg.BatchSize <= 0 {
		w.cfg.BatchSize = 20
	}
	if w.cfg.MaxAttempts <= 0 {
		w.cfg.MaxAttempts = 1
	}
	if w.cfg.PollInterval <= 0 {
		w.cfg.PollInterval = 5 * time.Second
	}
	return w
}

// Run drains the outbox every PollInterval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "notification worker started",
		"poll_interval", w.cfg.PollInterval,
		"max_attempts", w.cfg.MaxAttempts,
	)
	for {
		if _, err := w.ProcessDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "failed to process notification outbox", "error", err)
		}
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessDue claims one batch of due messages and attempts each once. It
// returns how many were delivered.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	limit := w.cfg.BatchSize
	if w.breaker.IsOpen() {
		limit = 1
	}
	now := w.now()
	leaseUntil := now.Add(LeaseFor(limit))
	msgs, err := w.outbox.ClaimDue(ctx, now, leaseUntil, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i, msg := range msgs {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		// Messages left leased here become due again when the lease ends.
		if i > 0 && w.breaker.IsOpen() {
			break
		}
		// Another worker may reclaim the row once the lease ends.
		if w.now().Add(sendBudget).After(leaseUntil) {
			w.logger.WarnContext(ctx, "notification lease nearly expired, leaving rest of batch",
				"remaining", len(msgs)-i,
			)
			break
		}
		if w.deliver(ctx, msg) {
			sent++
		}
	}
	return sent, nil
}

func (w *Worker) deliver(ctx context.Context, msg *models.Message) bool {
	sendErr := w.sender.SendInvitation(ctx, msg.Recipient, msg.Payload)
	w.recordOutcome(ctx, sendErr)
	if sendErr == nil {
		if err := w.outbox.MarkSent(ctx, msg.ID, w.now()); err != nil {
			w.logger.ErrorContext(ctx, "failed to mark notification sent", "outbox_id", msg.ID, "error", err)
		}
		w.metrics.IncrementNotificationsSent()
		return true
	}

	attempts := msg.Attempts + 1
	w.metrics.IncrementNotificationsFailed()

	if attempts >= w.cfg.MaxAttempts {
		w.logger.ErrorContext(ctx, "invitation mail dead-lettered",
			"outbox_id", msg.ID,
			"invitation_id", msg.InvitationID,
			"attempts", attempts,
			"error", sendErr,
		)
		if err := w.outbox.MarkDead(ctx, msg.ID, attempts, sendErr.Error()); err != nil {
			w.logger.ErrorContext(ctx, "failed to dead-letter notification", "outbox_id", msg.ID, "error", err)
		}
		w.metrics.IncrementNotificationsDeadLettered()
		return false
	}

	next := w.now().Add(Backoff(w.cfg.RetryBackoff, attempts))
	w.logger.WarnContext(ctx, "invitation mail failed, retrying",
		"outbox_id", msg.ID,
		"attempts", attempts,
		"next_attempt_at", next,
		"error", sendErr,
	)
	if err := w.outbox.MarkRetry(ctx, msg.ID, attempts, sendErr.Error(), next); err != nil {
		w.logger.ErrorContext(ctx, "failed to reschedule notification", "outbox_id", msg.ID, "error", err)
	}
	return false
}

func (w *Worker) recordOutcome(ctx context.Context, sendErr error) {
	if sendErr == nil {
		if _, change := w.breaker.RecordSuccess(); change.Closed {
			w.logger.InfoContext(ctx, "smtp circuit closed", "breaker", w.breaker.Name())
		}
		return
	}
	if _, change := w.breaker.RecordFailure(); change.Opened {
		w.logger.WarnContext(ctx, "smtp circuit opened, sending one message per poll",
			"breaker", w.breaker.Name(),
			"error", sendErr,
		)
	}
}

// Backoff is base * 2^(attempts-1), capped at one hour.
func Backoff(base time.Duration, attempts int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if attempts < 1 {
		attempts = 1
	}
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
