package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"projecthub/internal/tasks/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/httputil"
	"projecthub/pkg/requestcontext"
)

// Service defines the task operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	Update(ctx context.Context, t *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Task, error)
	List(ctx context.Context, projectID int64) ([]*models.Task, error)
}

// Handler serves the /tasks routes.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts task endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/tasks", h.HandleList)
	r.Post("/tasks/add", h.HandleCreate)
	r.Get("/tasks/{id}", h.HandleGet)
	r.Put("/tasks/{id}", h.HandleUpdate)
	r.Delete("/tasks/{id}", h.HandleDelete)
}

// HandleList lists tasks, filtered by the optional project_id query parameter.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var projectID int64
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := httputil.ParseID(raw, "project_id")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		projectID = id
	}

	tasks, err := h.service.List(ctx, projectID)
	if err != nil {
		h.logError(ctx, "failed to list tasks", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Data: tasks})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[TaskRequest](w, r, h.logger)
	if !ok {
		return
	}

	t, err := h.service.Create(ctx, req.toModel(0))
	if err != nil {
		h.logError(ctx, "failed to create task", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.MessageResponse{Message: "task created", Data: t})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	t, err := h.service.Get(ctx, id)
	if err != nil {
		h.logError(ctx, "failed to get task", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Data: t})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[TaskRequest](w, r, h.logger)
	if !ok {
		return
	}

	t, err := h.service.Update(ctx, req.toModel(id))
	if err != nil {
		h.logError(ctx, "failed to update task", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "task updated", Data: t})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		h.logError(ctx, "failed to delete task", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "task deleted"})
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
