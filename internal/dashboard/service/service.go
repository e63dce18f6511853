package service

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"projecthub/internal/dashboard/models"
	pmodels "projecthub/internal/projects/models"
	tmodels "projecthub/internal/tasks/models"
	dErrors "projecthub/pkg/domain-errors"
)

// RecentLimit is how many projects and how many tasks the summary shows.
const RecentLimit = 3

type ProjectSource interface {
	Recent(ctx context.Context, limit int) ([]*pmodels.Project, error)
}

type TaskSource interface {
	Recent(ctx context.Context, limit int) ([]*tmodels.Task, error)
}

// Service builds the dashboard summary.
type Service struct {
	projects ProjectSource
	tasks    TaskSource
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(projects ProjectSource, tasks TaskSource, opts ...Option) *Service {
	s := &Service{projects: projects, tasks: tasks, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recent returns the newest projects and tasks merged into one list, newest
// first. Both reads run concurrently; either failing cancels the other.
func (s *Service) Recent(ctx context.Context) ([]models.Item, error) {
	var (
		projects []*pmodels.Project
		tasks    []*tmodels.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.projects.Recent(gctx, RecentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.Recent(gctx, RecentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dashboard")
	}

	items := make([]models.Item, 0, len(projects)+len(tasks))
	for _, p := range projects {
		items = append(items, models.Item{
			Kind:        models.KindProject,
			ID:          p.ID,
			Titre:       p.Titre,
			Description: p.Description,
			State:       p.State,
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
			CreatedAt:   p.CreatedAt,
		})
	}
	for _, t := range tasks {
		projectID := t.ProjectID
		items = append(items, models.Item{
			Kind:        models.KindTask,
			ID:          t.ID,
			Titre:       t.Titre,
			Description: t.Description,
			State:       t.State,
			StartDate:   t.StartDate,
			EndDate:     t.EndDate,
			ProjectID:   &projectID,
			CreatedAt:   t.CreatedAt,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
