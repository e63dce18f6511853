package models

import (
	"strings"
	"time"

	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/email"
)

const maxTokenLength = 255

// TokenConstraint is the unique constraint on invitation tokens.
const TokenConstraint = "invitations_token_key"

// Status tracks whether an invitation has been accepted.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
)

// Invitation grants an email address access to a project. The token is a
// bearer secret and never leaves the API once stored.
type Invitation struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	Token      string     `json:"-"`
	ProjectID  int64      `json:"project_id"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}

// Validate normalizes the email and checks required fields.
func (i *Invitation) Validate() error {
	i.Email = email.Normalize(i.Email)
	i.Token = strings.TrimSpace(i.Token)
	switch {
	case i.Email == "":
		return dErrors.New(dErrors.CodeValidation, "email is required")
	case !email.IsValid(i.Email):
		return dErrors.New(dErrors.CodeValidation, "email must be a valid address")
	case i.Token == "":
		return dErrors.New(dErrors.CodeValidation, "token is required")
	case len(i.Token) > maxTokenLength:
		return dErrors.New(dErrors.CodeValidation, "token must be at most 255 characters")
	case i.ProjectID <= 0:
		return dErrors.New(dErrors.CodeValidation, "project_id is required")
	}
	if i.Status == "" {
		i.Status = StatusPending
	}
	return nil
}
