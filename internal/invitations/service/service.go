package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"projecthub/internal/invitations/models"
	nmodels "projecthub/internal/notification/models"
	"projecthub/internal/platform/metrics"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/email"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/requestcontext"
)

// Store is the persistence the invitation service needs.
type Store interface {
	Create(ctx context.Context, inv *models.Invitation) error
	ProjectTitle(ctx context.Context, projectID int64) (string, error)
	ListByProject(ctx context.Context, projectID int64) ([]*models.Invitation, error)
	FindByTokenForUpdate(ctx context.Context, token string) (*models.Invitation, error)
	MarkAccepted(ctx context.Context, id int64, at time.Time) error
}

// Outbox queues invitation mails for the notification worker.
type Outbox interface {
	Enqueue(ctx context.Context, msg *nmodels.Message) error
}

// TxRunner runs fn inside one database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service creates and accepts project invitations. Mail delivery is never
// attempted inline: the invitation and its outbox message commit together.
type Service struct {
	store   Store
	outbox  Outbox
	tx      TxRunner
	baseURL string
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBaseURL sets the public URL accept links are built from.
func WithBaseURL(base string) Option {
	return func(s *Service) {
		s.baseURL = strings.TrimRight(base, "/")
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, outbox Outbox, tx TxRunner, opts ...Option) *Service {
	s := &Service{
		store:   store,
		outbox:  outbox,
		tx:      tx,
		baseURL: "http://localhost:8080",
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a pending invitation and enqueues its mail in the same
// transaction. The (email, project) unique constraint decides concurrent
// duplicates.
func (s *Service) Create(ctx context.Context, inv *models.Invitation) (*models.Invitation, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		title, err := s.store.ProjectTitle(txCtx, inv.ProjectID)
		if err != nil {
			return wrapInvitationErr(err, "failed to load project")
		}
		if err := s.store.Create(txCtx, inv); err != nil {
			return wrapInvitationErr(err, "failed to create invitation")
		}
		if err := s.outbox.Enqueue(txCtx, s.invitationMessage(inv, title)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to queue invitation mail")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementInvitationsCreated()
	s.logger.InfoContext(ctx, "invitation created",
		"invitation_id", inv.ID,
		"project_id", inv.ProjectID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return inv, nil
}

func (s *Service) ListByProject(ctx context.Context, projectID int64) ([]*models.Invitation, error) {
	if projectID <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "project_id is required")
	}
	invitations, err := s.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invitations")
	}
	return invitations, nil
}

// Accept consumes a pending invitation token.
func (s *Service) Accept(ctx context.Context, token string) (*models.Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "token is required")
	}

	var accepted *models.Invitation
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		inv, err := s.store.FindByTokenForUpdate(txCtx, token)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "invitation not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load invitation")
		}
		if inv.Status == models.StatusAccepted {
			return dErrors.New(dErrors.CodeConflict, "invitation already accepted")
		}

		at := s.now().UTC()
		if err := s.store.MarkAccepted(txCtx, inv.ID, at); err != nil {
			return wrapInvitationErr(err, "failed to accept invitation")
		}
		inv.Status = models.StatusAccepted
		inv.AcceptedAt = &at
		accepted = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "invitation accepted",
		"invitation_id", accepted.ID,
		"project_id", accepted.ProjectID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return accepted, nil
}

func (s *Service) invitationMessage(inv *models.Invitation, projectTitle string) *nmodels.Message {
	firstName := email.GreetingName(inv.Email)
	return &nmodels.Message{
		InvitationID: inv.ID,
		Recipient:    inv.Email,
		Payload: nmodels.InvitationPayload{
			Email:        inv.Email,
			FirstName:    firstName,
			ProjectID:    inv.ProjectID,
			ProjectTitle: projectTitle,
			Token:        inv.Token,
			AcceptURL:    s.baseURL + "/invitations/accept?token=" + url.QueryEscape(inv.Token),
		},
	}
}

func wrapInvitationErr(err error, msg string) error {
	if constraint, ok := sentinel.DuplicateKey(err); ok && constraint == models.TokenConstraint {
		return dErrors.New(dErrors.CodeConflict, "token already in use")
	}
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "invitation already exists for this email and project")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "invitation already accepted")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "project not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
