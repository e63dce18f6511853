package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"projecthub/internal/dashboard/handler/mocks"
	"projecthub/internal/dashboard/models"
	"projecthub/internal/platform/logger"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/testutil"
)

func TestHandleRecent(t *testing.T) {
	newRouter := func(t *testing.T) (chi.Router, *mocks.MockService) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)
		r := chi.NewRouter()
		New(svc, logger.Discard()).Register(r)
		return r, svc
	}

	t.Run("returns data", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().Recent(gomock.Any()).Return([]models.Item{{Kind: models.KindProject, ID: 1, Titre: "P"}}, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/dashboard/prt"))
		testutil.AssertStatusOK(t, rr)
		assert.Contains(t, rr.Body.String(), `"type":"project"`)
		testutil.AssertJSONHasKey(t, rr, "data")
	})

	t.Run("failure is a 500 without detail", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().Recent(gomock.Any()).Return(nil,
			dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "failed to load dashboard"))

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/dashboard/prt"))
		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
		assert.NotContains(t, rr.Body.String(), "connection refused")
	})
}
