package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"projecthub/internal/materials/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/httputil"
	"projecthub/pkg/requestcontext"
)

// Service defines the material operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, m *models.Material) (*models.Material, error)
	Update(ctx context.Context, m *models.Material) (*models.Material, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Material, error)
	List(ctx context.Context) ([]*models.Material, error)
}

// Handler serves the /materials routes.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts material endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/materials", h.HandleList)
	r.Post("/materials/add", h.HandleCreate)
	r.Get("/materials/{id}", h.HandleGet)
	r.Put("/materials/{id}", h.HandleUpdate)
	r.Delete("/materials/{id}", h.HandleDelete)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	materials, err := h.service.List(ctx)
	if err != nil {
		h.logError(ctx, "failed to list materials", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Data: materials})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[MaterialRequest](w, r, h.logger)
	if !ok {
		return
	}

	m, err := h.service.Create(ctx, req.toModel(0))
	if err != nil {
		h.logError(ctx, "failed to create material", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.MessageResponse{Message: "material created", Data: m})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	m, err := h.service.Get(ctx, id)
	if err != nil {
		h.logError(ctx, "failed to get material", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Data: m})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[MaterialRequest](w, r, h.logger)
	if !ok {
		return
	}

	m, err := h.service.Update(ctx, req.toModel(id))
	if err != nil {
		h.logError(ctx, "failed to update material", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "material updated", Data: m})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		h.logError(ctx, "failed to delete material", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "material deleted"})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}
