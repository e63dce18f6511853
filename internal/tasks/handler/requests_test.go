package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/pkg/domain"
)

func TestTaskRequestValidateKeepsNormalizedFields(t *testing.T) {
	req := &TaskRequest{Titre: "  Pour slab ", ProjectID: 4}
	require.NoError(t, req.Validate())

	assert.Equal(t, "Pour slab", req.Titre)
	assert.Equal(t, domain.StatePending, req.State)
	require.NotNil(t, req.Precedence)
	assert.Empty(t, req.Precedence)
	assert.Equal(t, []int64{}, req.toModel(0).Precedence)
}
