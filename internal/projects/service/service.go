package service

import (
	"context"
	"errors"
	"log/slog"

	"projecthub/internal/platform/metrics"
	"projecthub/internal/projects/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/requestcontext"
)

const assigneeConstraint = "projects_asign_to_fkey"

// Store is the persistence the project service needs.
type Store interface {
	Create(ctx context.Context, p *models.Project) error
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
}

// Service implements project CRUD.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
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

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, wrapProjectErr(err, "failed to create project")
	}

	s.metrics.IncrementProjectsCreated()
	s.logger.InfoContext(ctx, "project created",
		"project_id", p.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return p, nil
}

func (s *Service) Update(ctx context.Context, p *models.Project) (*models.Project, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, wrapProjectErr(err, "failed to update project")
	}
	return p, nil
}

// Delete removes the project together with its tasks and invitations.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return wrapProjectErr(err, "failed to delete project")
	}
	s.logger.InfoContext(ctx, "project deleted",
		"project_id", id,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Project, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapProjectErr(err, "failed to load project")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Project, error) {
	projects, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	return projects, nil
}

// wrapProjectErr maps store sentinels. A not-found raised by a foreign key
// on asign_to surfaces as an unknown user.
func wrapProjectErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		if c, ok := sentinel.MissingReference(err); ok && c == assigneeConstraint {
			return dErrors.New(dErrors.CodeNotFound, "assigned user not found")
		}
		return dErrors.New(dErrors.CodeNotFound, "project not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
