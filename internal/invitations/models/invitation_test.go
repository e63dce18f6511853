package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "projecthub/pkg/domain-errors"
)

func TestInvitationValidate(t *testing.T) {
	t.Run("normalizes email and defaults status", func(t *testing.T) {
		inv := &Invitation{Email: " Bob@Example.com ", Token: " tok ", ProjectID: 1}
		require.NoError(t, inv.Validate())
		assert.Equal(t, "bob@example.com", inv.Email)
		assert.Equal(t, "tok", inv.Token)
		assert.Equal(t, StatusPending, inv.Status)
	})

	tests := []struct {
		name string
		inv  Invitation
	}{
		{"missing email", Invitation{Token: "t", ProjectID: 1}},
		{"invalid email", Invitation{Email: "not-an-email", Token: "t", ProjectID: 1}},
		{"missing token", Invitation{Email: "a@b.io", ProjectID: 1}},
		{"token too long", Invitation{Email: "a@b.io", Token: strings.Repeat("x", 256), ProjectID: 1}},
		{"missing project", Invitation{Email: "a@b.io", Token: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := tt.inv
			err := inv.Validate()
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}
