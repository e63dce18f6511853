package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	t.Run("set date uses calendar layout", func(t *testing.T) {
		b, err := json.Marshal(NewDate(2024, time.March, 9))
		require.NoError(t, err)
		assert.JSONEq(t, `"2024-03-09"`, string(b))
	})

	t.Run("zero date is null", func(t *testing.T) {
		b, err := json.Marshal(struct {
			D Date `json:"d"`
		}{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"d":null}`, string(b))
	})

	t.Run("null and empty decode to zero", func(t *testing.T) {
		var v struct {
			A Date `json:"a"`
			B Date `json:"b"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"a":null,"b":""}`), &v))
		assert.True(t, v.A.IsZero())
		assert.True(t, v.B.IsZero())
	})

	t.Run("rejects other layouts", func(t *testing.T) {
		var d Date
		require.Error(t, json.Unmarshal([]byte(`"09/03/2024"`), &d))
	})
}

func TestDateSQL(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 3, 9, 0, 0, 0, 0, time.FixedZone("X", 3600))))
	assert.Equal(t, NewDate(2024, time.March, 9), d)

	require.NoError(t, d.Scan([]byte("2025-01-02T00:00:00Z")))
	assert.Equal(t, "2025-01-02", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestStateIsValid(t *testing.T) {
	assert.True(t, StatePending.IsValid())
	assert.True(t, StateDone.IsValid())
	assert.False(t, State("archived").IsValid())
	assert.False(t, State("").IsValid())
}
