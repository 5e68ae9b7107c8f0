package adapters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCRAReportGate(t *testing.T) {
	t.Parallel()

	t.Run("allows the first action", func(t *testing.T) {
		t.Parallel()

		gate, err := NewGCRAReportGate(time.Minute)
		require.NoError(t, err)

		allowed, retryIn, err := gate.Allow()
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Zero(t, retryIn)
	})

	t.Run("limits actions inside the minimum spacing", func(t *testing.T) {
		t.Parallel()

		gate, err := NewGCRAReportGate(time.Minute)
		require.NoError(t, err)

		allowed, _, err := gate.Allow()
		require.NoError(t, err)
		require.True(t, allowed)

		allowed, retryIn, err := gate.Allow()
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Positive(t, retryIn)
	})

	t.Run("allows again after the spacing elapses", func(t *testing.T) {
		t.Parallel()

		gate, err := NewGCRAReportGate(20 * time.Millisecond)
		require.NoError(t, err)

		allowed, _, err := gate.Allow()
		require.NoError(t, err)
		require.True(t, allowed)

		time.Sleep(30 * time.Millisecond)

		allowed, _, err = gate.Allow()
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
