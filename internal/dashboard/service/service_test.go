package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ProjectSource,TaskSource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"projecthub/internal/dashboard/models"
	"projecthub/internal/dashboard/service/mocks"
	"projecthub/internal/platform/logger"
	pmodels "projecthub/internal/projects/models"
	tmodels "projecthub/internal/tasks/models"
	dErrors "projecthub/pkg/domain-errors"
)

func TestRecent(t *testing.T) {
	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	at := func(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

	t.Run("merges projects and tasks newest first", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		projects := mocks.NewMockProjectSource(ctrl)
		tasks := mocks.NewMockTaskSource(ctrl)

		projects.EXPECT().Recent(gomock.Any(), RecentLimit).Return([]*pmodels.Project{
			{ID: 30, Titre: "P3", CreatedAt: at(50)},
			{ID: 20, Titre: "P2", CreatedAt: at(30)},
			{ID: 10, Titre: "P1", CreatedAt: at(10)},
		}, nil)
		tasks.EXPECT().Recent(gomock.Any(), RecentLimit).Return([]*tmodels.Task{
			{ID: 3, Titre: "T3", ProjectID: 30, CreatedAt: at(60)},
			{ID: 2, Titre: "T2", ProjectID: 20, CreatedAt: at(40)},
			{ID: 1, Titre: "T1", ProjectID: 10, CreatedAt: at(20)},
		}, nil)

		items, err := New(projects, tasks, WithLogger(logger.Discard())).Recent(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 6)

		var titles []string
		for _, it := range items {
			titles = append(titles, it.Titre)
		}
		assert.Equal(t, []string{"T3", "P3", "T2", "P2", "T1", "P1"}, titles)
		assert.Equal(t, models.KindTask, items[0].Kind)
		require.NotNil(t, items[0].ProjectID)
		assert.Equal(t, int64(30), *items[0].ProjectID)
		assert.Nil(t, items[1].ProjectID)
	})

	t.Run("empty database", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		projects := mocks.NewMockProjectSource(ctrl)
		tasks := mocks.NewMockTaskSource(ctrl)
		projects.EXPECT().Recent(gomock.Any(), RecentLimit).Return(nil, nil)
		tasks.EXPECT().Recent(gomock.Any(), RecentLimit).Return(nil, nil)

		items, err := New(projects, tasks).Recent(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("one failing read fails the summary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		projects := mocks.NewMockProjectSource(ctrl)
		tasks := mocks.NewMockTaskSource(ctrl)
		projects.EXPECT().Recent(gomock.Any(), RecentLimit).Return(nil, errors.New("timeout"))
		tasks.EXPECT().Recent(gomock.Any(), RecentLimit).Return(nil, nil).AnyTimes()

		_, err := New(projects, tasks).Recent(context.Background())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
