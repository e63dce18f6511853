package handler

import (
	"strings"

	"projecthub/internal/invitations/models"
	dErrors "projecthub/pkg/domain-errors"
)

// CreateInvitationRequest is the body of POST /invitations/add.
type CreateInvitationRequest struct {
	Email     string `json:"email"`
	Token     string `json:"token"`
	ProjectID int64  `json:"project_id"`
}

func (r *CreateInvitationRequest) Validate() error {
	inv := r.toModel()
	if err := inv.Validate(); err != nil {
		return err
	}
	r.Email, r.Token = inv.Email, inv.Token
	return nil
}

func (r *CreateInvitationRequest) toModel() *models.Invitation {
	return &models.Invitation{Email: r.Email, Token: r.Token, ProjectID: r.ProjectID}
}

// AcceptInvitationRequest is the body of POST /invitations/accept.
type AcceptInvitationRequest struct {
	Token string `json:"token"`
}

func (r *AcceptInvitationRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	return nil
}
