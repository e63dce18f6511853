package service

import (
	"context"
	"errors"
	"log/slog"

	"projecthub/internal/materials/models"
	"projecthub/internal/platform/metrics"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/requestcontext"
)

// Store is the persistence the material service needs.
type Store interface {
	Create(ctx context.Context, m *models.Material) error
	Update(ctx context.Context, m *models.Material) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Material, error)
	List(ctx context.Context) ([]*models.Material, error)
}

// Service implements material CRUD.
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

func (s *Service) Create(ctx context.Context, m *models.Material) (*models.Material, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, wrapMaterialErr(err, "failed to create material")
	}

	s.metrics.IncrementMaterialsCreated()
	s.logger.InfoContext(ctx, "material created",
		"material_id", m.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return m, nil
}

func (s *Service) Update(ctx context.Context, m *models.Material) (*models.Material, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, m); err != nil {
		return nil, wrapMaterialErr(err, "failed to update material")
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return wrapMaterialErr(err, "failed to delete material")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Material, error) {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapMaterialErr(err, "failed to load material")
	}
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Material, error) {
	materials, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list materials")
	}
	return materials, nil
}

func wrapMaterialErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		if _, ok := sentinel.MissingReference(err); ok {
			return dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return dErrors.New(dErrors.CodeNotFound, "material not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
