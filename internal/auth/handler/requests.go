package handler

import (
	"strings"
	"time"

	umodels "projecthub/internal/users/models"
	dErrors "projecthub/pkg/domain-errors"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Message   string        `json:"message"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *umodels.User `json:"user"`
}
