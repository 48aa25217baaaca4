package simulation

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticPrices builds a K-asset random-walk price table with per-asset
// daily volatility vols[a]. Uncorrelated increments give an approximately
// diagonal covariance matrix.
func syntheticPrices(numDates int, vols []float64, seed int64) PriceTable {
	rng := rand.New(rand.NewSource(seed))
	symbols := make([]string, len(vols))
	for a := range symbols {
		symbols[a] = string(rune('A' + a))
	}

	closes := make([][]float64, numDates)
	prev := make([]float64, len(vols))
	for a := range prev {
		prev[a] = 100.0
	}
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, numDates)
	for t := 0; t < numDates; t++ {
		row := make([]float64, len(vols))
		for a := range vols {
			prev[a] *= math.Exp(rng.NormFloat64() * vols[a])
			row[a] = prev[a]
		}
		closes[t] = row
		dates[t] = start.AddDate(0, 0, t)
	}

	return PriceTable{Symbols: symbols, Dates: dates, Closes: closes}
}

func TestService_Run_Optimality(t *testing.T) {
	svc := NewService(zerolog.Nop())
	seed := int64(11)

	result, err := svc.Run(Request{
		Prices:      syntheticPrices(300, []float64{0.01, 0.02, 0.015}, 3),
		Simulations: 2000,
		Seed:        &seed,
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 2000)
	require.NotNil(t, result.Optimal)
	assert.Same(t, &result.Records[result.OptimalIndex], result.Optimal)

	for i, rec := range result.Records {
		if rec.Degenerate {
			continue
		}
		assert.GreaterOrEqual(t, result.Optimal.Sharpe, rec.Sharpe, "record %d beats the selected optimum", i)
	}
}

func TestService_Run_Determinism(t *testing.T) {
	svc := NewService(zerolog.Nop())
	prices := syntheticPrices(120, []float64{0.01, 0.02}, 5)
	seed := int64(1234)

	first, err := svc.Run(Request{Prices: prices, Simulations: 1000, Seed: &seed})
	require.NoError(t, err)
	second, err := svc.Run(Request{Prices: prices, Simulations: 1000, Seed: &seed})
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.OptimalIndex, second.OptimalIndex)
}

func TestService_Run_DiagonalRiskBound(t *testing.T) {
	// K=5 uncorrelated assets: with long-only unit-sum weights, w'Σw is a
	// convex combination of matrix entries (the w_i*w_j coefficients sum to
	// 1), and for a PSD sample covariance no entry exceeds the largest
	// diagonal variance. So portfolio risk is bounded by sqrt(max var).
	svc := NewService(zerolog.Nop())
	seed := int64(77)

	result, err := svc.Run(Request{
		Prices:      syntheticPrices(500, []float64{0.008, 0.012, 0.016, 0.02, 0.025}, 9),
		Simulations: 5000,
		Seed:        &seed,
	})
	require.NoError(t, err)

	maxVar := 0.0
	for a := 0; a < 5; a++ {
		if v := result.Covariance[a][a]; v > maxVar {
			maxVar = v
		}
	}
	bound := math.Sqrt(maxVar) * (1 + 1e-9)

	for i, rec := range result.Records {
		require.LessOrEqual(t, rec.Risk, bound, "record %d exceeds the diagonal risk bound", i)
	}
}

func TestService_Run_AllDegenerate(t *testing.T) {
	// Constant prices give zero returns and a zero covariance matrix, so
	// every sampled portfolio has zero risk.
	svc := NewService(zerolog.Nop())

	closes := make([][]float64, 10)
	dates := make([]time.Time, 10)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for t := range closes {
		closes[t] = []float64{100, 50}
		dates[t] = start.AddDate(0, 0, t)
	}

	seed := int64(2)
	_, err := svc.Run(Request{
		Prices:      PriceTable{Symbols: []string{"A", "B"}, Dates: dates, Closes: closes},
		Simulations: 50,
		Seed:        &seed,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoValidCandidate)
}

func TestService_Run_ParameterValidation(t *testing.T) {
	svc := NewService(zerolog.Nop())
	prices := syntheticPrices(30, []float64{0.01, 0.02}, 1)

	_, err := svc.Run(Request{Prices: prices, Simulations: 0})
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = svc.Run(Request{Prices: prices, Simulations: MaxSimulations + 1})
	assert.ErrorIs(t, err, ErrInvalidParameters)

	single := PriceTable{
		Symbols: []string{"A"},
		Dates:   prices.Dates,
		Closes:  [][]float64{{100}, {101}},
	}
	_, err = svc.Run(Request{Prices: single, Simulations: 100})
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestService_Run_RiskFreeRateShiftsSharpe(t *testing.T) {
	svc := NewService(zerolog.Nop())
	prices := syntheticPrices(200, []float64{0.01, 0.02}, 21)
	seed := int64(8)

	zero, err := svc.Run(Request{Prices: prices, Simulations: 200, Seed: &seed})
	require.NoError(t, err)
	shifted, err := svc.Run(Request{Prices: prices, Simulations: 200, RiskFreeRate: 0.03, Seed: &seed})
	require.NoError(t, err)

	// Same ensemble, the excess-return numerator shrinks by rho for every record.
	for i := range zero.Records {
		r := zero.Records[i]
		s := shifted.Records[i]
		require.Equal(t, r.Weights, s.Weights)
		require.InDelta(t, r.Sharpe-0.03/r.Risk, s.Sharpe, 1e-9)
	}
}
