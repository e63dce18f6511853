//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"projecthub/internal/materials/models"
	"projecthub/internal/materials/store"
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
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "materials", "projects"))
}

func (s *PostgresStoreSuite) TestCRUD() {
	ctx := context.Background()
	m := &models.Material{Name: "Gravel", Description: "20mm", Quantity: 12, Unit: "t"}
	s.Require().NoError(s.store.Create(ctx, m))

	m.Quantity = 3
	s.Require().NoError(s.store.Update(ctx, m))

	got, err := s.store.FindByID(ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(3, got.Quantity)
	s.Nil(got.ProjectID)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)

	s.Require().NoError(s.store.Delete(ctx, m.ID))
	s.ErrorIs(s.store.Delete(ctx, m.ID), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestNegativeQuantityRejectedByConstraint() {
	err := s.store.Create(context.Background(), &models.Material{Name: "Gravel", Quantity: -1})
	s.Error(err)
}

func (s *PostgresStoreSuite) TestUnknownProject() {
	ghost := int64(5555)
	err := s.store.Create(context.Background(), &models.Material{Name: "Gravel", ProjectID: &ghost})
	s.ErrorIs(err, sentinel.ErrNotFound)
}
