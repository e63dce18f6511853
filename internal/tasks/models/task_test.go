package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/pkg/domain"
	dErrors "projecthub/pkg/domain-errors"
)

func TestTaskValidate(t *testing.T) {
	valid := func() *Task {
		return &Task{Titre: "Pour slab", ProjectID: 1, State: domain.StatePending}
	}

	t.Run("nil precedence becomes empty", func(t *testing.T) {
		task := valid()
		require.NoError(t, task.Validate())
		assert.NotNil(t, task.Precedence)
		assert.Empty(t, task.Precedence)
	})

	tests := []struct {
		name   string
		mutate func(*Task)
	}{
		{"missing titre", func(t *Task) { t.Titre = "" }},
		{"missing project", func(t *Task) { t.ProjectID = 0 }},
		{"bad state", func(t *Task) { t.State = "blocked" }},
		{"negative precedence", func(t *Task) { t.Precedence = []int64{2, -1} }},
		{"duplicate precedence", func(t *Task) { t.Precedence = []int64{2, 3, 2} }},
		{"self precedence", func(t *Task) { t.ID = 4; t.Precedence = []int64{4} }},
		{"end before start", func(t *Task) {
			t.StartDate = domain.NewDate(2026, time.May, 2)
			t.EndDate = domain.NewDate(2026, time.May, 1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := valid()
			tt.mutate(task)
			assert.True(t, dErrors.HasCode(task.Validate(), dErrors.CodeValidation))
		})
	}
}
