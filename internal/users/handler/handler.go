package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"projecthub/internal/users/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/httputil"
	"projecthub/pkg/requestcontext"
)

// Service defines the user operations exposed over HTTP.
type Service interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, in models.NewUser) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	ChangePassword(ctx context.Context, in models.PasswordChange) error
}

// Handler serves the /users routes.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts user endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users", h.HandleProbe)
	r.Post("/users/add", h.HandleCreate)
	r.Post("/users/changePass", h.HandleChangePassword)
	r.Get("/users/all", h.HandleList)
	r.Get("/users/{id}", h.HandleGet)
}

// HandleProbe reports whether the database answers.
func (h *Handler) HandleProbe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "database ping failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "database connection ok"})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateUserRequest](w, r, h.logger)
	if !ok {
		return
	}

	u, err := h.service.Create(ctx, req.toModel())
	if err != nil {
		h.logError(ctx, "failed to create user", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.MessageResponse{Message: "user created", Data: u})
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ChangePasswordRequest](w, r, h.logger)
	if !ok {
		return
	}

	err := h.service.ChangePassword(ctx, models.PasswordChange{
		UserID:      req.ID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.logError(ctx, "failed to change password", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "password updated"})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.service.List(ctx)
	if err != nil {
		h.logError(ctx, "failed to list users", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Data: users})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	u, err := h.service.Get(ctx, id)
	if err != nil {
		h.logError(ctx, "failed to get user", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Data: u})
}

// logError logs server faults at error level and client mistakes at warn.
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
