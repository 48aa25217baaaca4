package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleWeights_SimplexProperty(t *testing.T) {
	seed := int64(7)
	weights, err := SampleWeights(5, 2000, &seed)
	require.NoError(t, err)
	require.Len(t, weights, 2000)

	for i, row := range weights {
		require.Len(t, row, 5)
		sum := 0.0
		for _, w := range row {
			assert.GreaterOrEqual(t, w, 0.0, "row %d has a negative weight", i)
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "row %d does not sum to 1", i)
	}
}

func TestSampleWeights_Determinism(t *testing.T) {
	seed := int64(42)
	first, err := SampleWeights(4, 500, &seed)
	require.NoError(t, err)
	second, err := SampleWeights(4, 500, &seed)
	require.NoError(t, err)

	// Bit-identical, not merely close.
	assert.Equal(t, first, second)
}

func TestSampleWeights_UnseededRunsDiffer(t *testing.T) {
	first, err := SampleWeights(3, 100, nil)
	require.NoError(t, err)
	second, err := SampleWeights(3, 100, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSampleWeights_InvalidParameters(t *testing.T) {
	tests := []struct {
		name      string
		numAssets int
		numSims   int
	}{
		{"zero simulations", 3, 0},
		{"negative simulations", 3, -5},
		{"over cap", 3, MaxSimulations + 1},
		{"single asset", 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SampleWeights(tt.numAssets, tt.numSims, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameters)
		})
	}
}
