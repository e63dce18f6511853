//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"projecthub/internal/projects/models"
	"projecthub/internal/projects/store"
	"projecthub/pkg/domain"
	"projecthub/pkg/platform/sentinel"
	"projecthub/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "projects", "users"))
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	p := &models.Project{
		Titre:       "Warehouse",
		Description: "New storage",
		StartDate:   domain.NewDate(2026, time.January, 5),
		EndDate:     domain.NewDate(2026, time.February, 20),
		State:       domain.StateInProgress,
	}
	s.Require().NoError(s.store.Create(ctx, p))

	got, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Titre, got.Titre)
	s.True(p.StartDate.Equal(got.StartDate))
	s.True(p.EndDate.Equal(got.EndDate))
	s.Equal(domain.StateInProgress, got.State)
	s.Nil(got.AsignTo)
}

func (s *PostgresStoreSuite) TestUnknownAssigneeIsMissingReference() {
	ghost := int64(424242)
	err := s.store.Create(context.Background(), &models.Project{Titre: "x", State: domain.StatePending, AsignTo: &ghost})
	s.ErrorIs(err, sentinel.ErrNotFound)
	constraint, ok := sentinel.MissingReference(err)
	s.True(ok)
	s.Equal("projects_asign_to_fkey", constraint)
}

func (s *PostgresStoreSuite) TestUpdateDeleteMissing() {
	ctx := context.Background()
	s.ErrorIs(s.store.Update(ctx, &models.Project{ID: 999, Titre: "x", State: domain.StatePending}), sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, 999), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRecentOrdersNewestFirst() {
	ctx := context.Background()
	for _, titre := range []string{"a", "b", "c", "d"} {
		s.Require().NoError(s.store.Create(ctx, &models.Project{Titre: titre, State: domain.StatePending}))
	}

	recent, err := s.store.Recent(ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(recent, 3)
	s.Equal("d", recent[0].Titre)
	s.Equal("b", recent[2].Titre)
}
