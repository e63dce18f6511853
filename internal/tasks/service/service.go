package service

import (
	"context"
	"errors"
	"log/slog"

	"projecthub/internal/platform/metrics"
	"projecthub/internal/tasks/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/requestcontext"
)

const (
	projectConstraint  = "tasks_id_projet_fkey"
	assigneeConstraint = "tasks_asign_to_fkey"
)

// Store is the persistence the task service needs.
type Store interface {
	Create(ctx context.Context, t *models.Task) error
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	List(ctx context.Context, projectID int64) ([]*models.Task, error)
	ProjectExists(ctx context.Context, projectID int64) (bool, error)
	CountInProject(ctx context.Context, projectID int64, ids []int64) (int, error)
}

// TxRunner runs fn inside one database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements task CRUD with precedence checks.
type Service struct {
	store   Store
	tx      TxRunner
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

func New(store Store, tx TxRunner, opts ...Option) *Service {
	s := &Service{store: store, tx: tx, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a task once its project exists and every precedence id is a
// task of that same project.
func (s *Service) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkReferences(txCtx, t); err != nil {
			return err
		}
		if err := s.store.Create(txCtx, t); err != nil {
			return wrapTaskErr(err, "failed to create task")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementTasksCreated()
	s.logger.InfoContext(ctx, "task created",
		"task_id", t.ID,
		"project_id", t.ProjectID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return t, nil
}

func (s *Service) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkReferences(txCtx, t); err != nil {
			return err
		}
		if err := s.store.Update(txCtx, t); err != nil {
			return wrapTaskErr(err, "failed to update task")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.store.Delete(txCtx, id)
	})
	if err != nil {
		return wrapTaskErr(err, "failed to delete task")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Task, error) {
	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapTaskErr(err, "failed to load task")
	}
	return t, nil
}

// List returns all tasks, or those of projectID when it is non-zero.
func (s *Service) List(ctx context.Context, projectID int64) ([]*models.Task, error) {
	tasks, err := s.store.List(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tasks")
	}
	return tasks, nil
}

func (s *Service) checkReferences(ctx context.Context, t *models.Task) error {
	exists, err := s.store.ProjectExists(ctx, t.ProjectID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check project")
	}
	if !exists {
		return dErrors.New(dErrors.CodeNotFound, "project not found")
	}
	if len(t.Precedence) == 0 {
		return nil
	}

	n, err := s.store.CountInProject(ctx, t.ProjectID, t.Precedence)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check precedence")
	}
	if n != len(t.Precedence) {
		return dErrors.New(dErrors.CodeValidation, "precedence must reference tasks of the same project")
	}
	return nil
}

func wrapTaskErr(err error, msg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		switch c, _ := sentinel.MissingReference(err); c {
		case projectConstraint:
			return dErrors.New(dErrors.CodeNotFound, "project not found")
		case assigneeConstraint:
			return dErrors.New(dErrors.CodeNotFound, "assigned user not found")
		default:
			return dErrors.New(dErrors.CodeNotFound, "task not found")
		}
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
