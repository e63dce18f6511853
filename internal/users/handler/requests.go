package handler

import (
	"strings"

	"projecthub/internal/users/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/email"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

// CreateUserRequest is the body of POST /users/add.
type CreateUserRequest struct {
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Telephone string `json:"telephone"`
	Mail      string `json:"mail"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

func (r *CreateUserRequest) Validate() error {
	r.Nom = strings.TrimSpace(r.Nom)
	r.Prenom = strings.TrimSpace(r.Prenom)
	r.Telephone = strings.TrimSpace(r.Telephone)
	r.Mail = strings.TrimSpace(r.Mail)
	r.Role = strings.TrimSpace(r.Role)

	if r.Nom == "" || r.Prenom == "" || r.Telephone == "" || r.Mail == "" || r.Password == "" || r.Role == "" {
		return dErrors.New(dErrors.CodeValidation, "nom, prenom, telephone, mail, password and role are required")
	}
	if !email.IsValid(r.Mail) {
		return dErrors.New(dErrors.CodeValidation, "mail must be a valid email address")
	}
	return validatePassword(r.Password)
}

func (r *CreateUserRequest) toModel() models.NewUser {
	return models.NewUser{
		Nom:       r.Nom,
		Prenom:    r.Prenom,
		Telephone: r.Telephone,
		Mail:      r.Mail,
		Password:  r.Password,
		Role:      r.Role,
	}
}

// ChangePasswordRequest is the body of POST /users/changePass.
type ChangePasswordRequest struct {
	ID          int64  `json:"id"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() error {
	if r.ID <= 0 || r.OldPassword == "" || r.NewPassword == "" {
		return dErrors.New(dErrors.CodeValidation, "id, oldPassword and newPassword are required")
	}
	return validatePassword(r.NewPassword)
}

func validatePassword(p string) error {
	if len(p) < minPasswordLength || len(p) > maxPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be between 8 and 72 characters")
	}
	return nil
}
