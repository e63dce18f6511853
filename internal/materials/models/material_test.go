package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "projecthub/pkg/domain-errors"
)

func TestMaterialValidate(t *testing.T) {
	t.Run("trims text fields", func(t *testing.T) {
		m := &Material{Name: "  Gravel ", Unit: " t ", Description: " washed\n", Quantity: MaxQuantity}
		require.NoError(t, m.Validate())
		assert.Equal(t, "Gravel", m.Name)
		assert.Equal(t, "t", m.Unit)
		assert.Equal(t, "washed", m.Description)
	})

	t.Run("quantity bounds", func(t *testing.T) {
		for _, q := range []int{-1, MaxQuantity + 1} {
			err := (&Material{Name: "Gravel", Quantity: q}).Validate()
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "quantity %d", q)
		}
	})

	t.Run("blank name", func(t *testing.T) {
		err := (&Material{Name: "   "}).Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
