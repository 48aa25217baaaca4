package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateEnsemble_TwoAssetScenario(t *testing.T) {
	// Prices A=[100,101,102], B=[50,49,51] with a forced weight vector,
	// checked against values computed by hand from the same formulas.
	retsA := []float64{math.Log(101.0 / 100.0), math.Log(102.0 / 101.0)}
	retsB := []float64{math.Log(49.0 / 50.0), math.Log(51.0 / 49.0)}

	means := []float64{sliceMean(retsA) * 252, sliceMean(retsB) * 252}
	cov := [][]float64{
		{sampleCov(retsA, retsA) * 252, sampleCov(retsA, retsB) * 252},
		{sampleCov(retsB, retsA) * 252, sampleCov(retsB, retsB) * 252},
	}

	w := []float64{0.6, 0.4}
	records, degenerate, err := EvaluateEnsemble([][]float64{w}, means, cov, 0.0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0, degenerate)

	expectedReturn := 0.6*means[0] + 0.4*means[1]
	variance := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			variance += w[i] * w[j] * cov[i][j]
		}
	}
	expectedRisk := math.Sqrt(variance)

	assert.InDelta(t, expectedReturn, records[0].Return, 1e-6)
	assert.InDelta(t, expectedRisk, records[0].Risk, 1e-6)
	assert.InDelta(t, expectedReturn/expectedRisk, records[0].Sharpe, 1e-6)
	assert.False(t, records[0].Degenerate)
}

func TestEvaluateEnsemble_MatchesPerRowLoop(t *testing.T) {
	// The batched computation must agree with a naive per-row loop up to
	// floating-point rounding.
	means := []float64{0.12, 0.08, 0.15}
	cov := [][]float64{
		{0.040, 0.010, 0.005},
		{0.010, 0.030, 0.008},
		{0.005, 0.008, 0.060},
	}
	seed := int64(99)
	weights, err := SampleWeights(3, 5000, &seed)
	require.NoError(t, err)

	records, _, err := EvaluateEnsemble(weights, means, cov, 0.02)
	require.NoError(t, err)

	for i, w := range weights {
		ret := 0.0
		for a := range w {
			ret += w[a] * means[a]
		}
		variance := 0.0
		for a := range w {
			for b := range w {
				variance += w[a] * w[b] * cov[a][b]
			}
		}
		risk := math.Sqrt(variance)

		require.InDelta(t, ret, records[i].Return, 1e-10)
		require.InDelta(t, risk, records[i].Risk, 1e-10)
		require.InDelta(t, (ret-0.02)/risk, records[i].Sharpe, 1e-9)
	}
}

func TestEvaluateEnsemble_DegenerateRiskFlagged(t *testing.T) {
	means := []float64{0.10, 0.05}
	cov := [][]float64{{0, 0}, {0, 0}} // zero variance everywhere

	seed := int64(1)
	weights, err := SampleWeights(2, 10, &seed)
	require.NoError(t, err)

	records, degenerate, err := EvaluateEnsemble(weights, means, cov, 0.0)
	require.NoError(t, err)
	assert.Equal(t, 10, degenerate)

	for _, rec := range records {
		assert.True(t, rec.Degenerate)
		assert.True(t, math.IsNaN(rec.Sharpe), "degenerate records must not carry a usable Sharpe")
	}
}

func TestEvaluateEnsemble_Validation(t *testing.T) {
	tests := []struct {
		name    string
		weights [][]float64
		means   []float64
		cov     [][]float64
	}{
		{"empty ensemble", nil, []float64{0.1, 0.2}, [][]float64{{1, 0}, {0, 1}}},
		{"cov shape mismatch", [][]float64{{0.5, 0.5}}, []float64{0.1, 0.2}, [][]float64{{1, 0}}},
		{"ragged cov", [][]float64{{0.5, 0.5}}, []float64{0.1, 0.2}, [][]float64{{1}, {0, 1}}},
		{"weight width mismatch", [][]float64{{1.0}}, []float64{0.1, 0.2}, [][]float64{{1, 0}, {0, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := EvaluateEnsemble(tt.weights, tt.means, tt.cov, 0.0)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameters)
		})
	}
}
