package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"projecthub/internal/materials/handler/mocks"
	"projecthub/internal/materials/models"
	"projecthub/internal/platform/logger"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/testutil"
)

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	r := chi.NewRouter()
	New(svc, logger.Discard()).Register(r)
	return r, svc
}

func TestMaterialRoutes(t *testing.T) {
	t.Run("create trims and returns 201", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, m *models.Material) (*models.Material, error) {
				assert.Equal(t, "Cement", m.Name)
				assert.Equal(t, "bag", m.Unit)
				m.ID = 2
				return m, nil
			})

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/materials/add", map[string]any{
			"name": " Cement ", "quantity": 40, "unit": " bag",
		}))
		testutil.AssertStatus(t, rr, http.StatusCreated)
	})

	t.Run("missing name", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/materials/add", map[string]any{"quantity": 1}))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("negative quantity", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/materials/3", map[string]any{"name": "Sand", "quantity": -4}))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("quantity above column range", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/materials/add", map[string]any{
			"name": "Sand", "quantity": int64(models.MaxQuantity) + 1,
		}))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("delete missing", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().Delete(gomock.Any(), int64(3)).Return(dErrors.New(dErrors.CodeNotFound, "material not found"))
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/materials/3"))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("list", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().List(gomock.Any()).Return([]*models.Material{{ID: 1, Name: "Sand"}}, nil)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/materials"))
		testutil.AssertStatusOK(t, rr)
		assert.Contains(t, rr.Body.String(), `"name":"Sand"`)
	})
}
