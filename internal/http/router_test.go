package httpapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"projecthub/internal/platform/logger"
	"projecthub/internal/platform/metrics"
	"projecthub/pkg/platform/httputil"
	"projecthub/pkg/testutil"
)

type pingHandler struct{}

func (pingHandler) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "pong"})
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	r.Get("/slow", func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
}

func newTestRouter(checks map[string]HealthCheck) http.Handler {
	reg := prometheus.NewRegistry()
	return NewRouter(Config{
		Logger:       logger.Discard(),
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
		Handlers:     []Registrar{pingHandler{}},
		HealthChecks: checks,
	})
}

func TestRouterMountsHandlersUnderAPI(t *testing.T) {
	router := newTestRouter(nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/ping"))
	testutil.AssertStatusOK(t, rr)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/ping"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestRouterRecoversPanics(t *testing.T) {
	rr := testutil.DoRequest(newTestRouter(nil), testutil.NewRequest(t, http.MethodGet, "/api/boom"))
	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
}

func TestRouterMethodNotAllowed(t *testing.T) {
	rr := testutil.DoRequest(newTestRouter(nil), testutil.NewRequest(t, http.MethodDelete, "/api/ping"))
	testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
}

func TestHealthz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	t.Run("all dependencies up", func(t *testing.T) {
		rr := testutil.DoRequest(newTestRouter(map[string]HealthCheck{"database": ok}),
			testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "message", "ok")
	})

	t.Run("database down", func(t *testing.T) {
		rr := testutil.DoRequest(newTestRouter(map[string]HealthCheck{"database": down, "redis": ok}),
			testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		assert.Contains(t, rr.Body.String(), `"database":"unavailable"`)
		assert.NotContains(t, rr.Body.String(), "refused")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(nil)
	testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/ping"))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(t, rr)
	assert.Contains(t, rr.Body.String(), `projecthub_http_request_duration_seconds_count{method="GET",route="/api/ping",status="200"} 1`)
}

func TestRouterRecordsPanickingRequests(t *testing.T) {
	router := newTestRouter(nil)
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/boom"))
	testutil.AssertStatus(t, rr, http.StatusInternalServerError)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	assert.Contains(t, rr.Body.String(), `projecthub_http_request_duration_seconds_count{method="GET",route="/api/boom",status="500"} 1`)
}

func TestRouterTimeoutAnswersJSON(t *testing.T) {
	router := NewRouter(Config{
		Logger:         logger.Discard(),
		Handlers:       []Registrar{pingHandler{}},
		RequestTimeout: 20 * time.Millisecond,
	})
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/slow"))
	testutil.AssertStatusAndError(t, rr, http.StatusGatewayTimeout, "timeout")
}
