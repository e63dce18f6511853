package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"projecthub/internal/invitations/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/httputil"
	"projecthub/pkg/requestcontext"
)

// Service defines the invitation operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, inv *models.Invitation) (*models.Invitation, error)
	ListByProject(ctx context.Context, projectID int64) ([]*models.Invitation, error)
	Accept(ctx context.Context, token string) (*models.Invitation, error)
}

// Handler serves the /invitations routes.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts invitation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/invitations", h.HandleList)
	r.Post("/invitations/add", h.HandleCreate)
	r.Post("/invitations/accept", h.HandleAccept)
}

// HandleCreate stores the invitation and queues its mail. The response does
// not wait for delivery.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateInvitationRequest](w, r, h.logger)
	if !ok {
		return
	}

	inv, err := h.service.Create(ctx, req.toModel())
	if err != nil {
		h.logError(ctx, "failed to create invitation", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.MessageResponse{Message: "invitation created", Data: inv})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, err := httputil.ParseID(r.URL.Query().Get("project_id"), "project_id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	invitations, err := h.service.ListByProject(ctx, projectID)
	if err != nil {
		h.logError(ctx, "failed to list invitations", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Data: invitations})
}

func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[AcceptInvitationRequest](w, r, h.logger)
	if !ok {
		return
	}

	inv, err := h.service.Accept(ctx, req.Token)
	if err != nil {
		h.logError(ctx, "failed to accept invitation", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "invitation accepted", Data: inv})
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
