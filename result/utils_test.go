package result

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	t.Run("non-empty", func(t *testing.T) {
		assert.NotEmpty(t, NewID())
	})

	t.Run("valid base64 RawURL encoding of 16 bytes", func(t *testing.T) {
		id := NewID()
		decoded, err := base64.RawURLEncoding.DecodeString(id)
		require.NoError(t, err)
		assert.Len(t, decoded, 16)
	})

	t.Run("unique across calls", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 100 {
			id := NewID()
			_, dup := seen[id]
			assert.False(t, dup, "duplicate id: %s", id)
			seen[id] = struct{}{}
		}
	})
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 0, want: 0},
		{in: 10.004, want: 10},
		{in: 33.3333333, want: 33.33},
		{in: 66.6666666, want: 66.67},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round2(tt.in), 1e-9, "Round2(%v)", tt.in)
	}
}
