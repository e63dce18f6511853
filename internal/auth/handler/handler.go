package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"projecthub/internal/auth/service"
	umodels "projecthub/internal/users/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/httputil"
	"projecthub/pkg/requestcontext"
)

// Service defines the auth operations exposed over HTTP.
type Service interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Me(ctx context.Context, userID int64) (*umodels.User, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

// Handler serves login and the authenticated /auth routes.
type Handler struct {
	service     Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
	throttle    func(http.Handler) http.Handler
}

// New wires the handler. requireAuth guards /auth/*; throttle limits
// login attempts per client.
func New(service Service, logger *slog.Logger, requireAuth, throttle func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logger: logger, requireAuth: requireAuth, throttle: throttle}
}

func (h *Handler) Register(r chi.Router) {
	r.With(h.throttle).Post("/login", h.HandleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/auth/me", h.HandleMe)
		r.Post("/auth/logout", h.HandleLogout)
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logError(ctx, "login failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		Message:   "login successful",
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      res.User,
	})
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.service.Me(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logError(ctx, "failed to load current user", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Data: user})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Logout(ctx, requestcontext.TokenID(ctx), requestcontext.TokenExpiry(ctx)); err != nil {
		h.logError(ctx, "failed to logout", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "logged out"})
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
