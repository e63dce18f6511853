package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"projecthub/internal/dashboard/models"
	"projecthub/pkg/platform/httputil"
	"projecthub/pkg/requestcontext"
)

type Service interface {
	Recent(ctx context.Context) ([]models.Item, error)
}

// Handler serves the dashboard summary.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard/prt", h.HandleRecent)
}

// HandleRecent returns the newest projects and tasks as one list, newest first.
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Recent(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dashboard query failed",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.DebugContext(r.Context(), "dashboard served", "items", len(items))
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Data: items})
}
