package simulation

import (
	"fmt"
	"math/rand"
	"time"
)

// SampleWeights draws numSims random long-only weight vectors over numAssets
// assets: an N x K matrix of independent uniform(0,1) values, each row
// normalized by its sum. Every row is non-negative and sums to 1.
//
// Note that this distribution is not uniform over the simplex: normalized
// i.i.d. uniforms concentrate toward the centroid relative to a symmetric
// Dirichlet draw. That is acceptable for exploratory sampling but the results
// should not be presented as a uniformly sampled optimum search.
//
// With a non-nil seed the output is bit-reproducible; with a nil seed each
// call is independently randomized.
func SampleWeights(numAssets, numSims int, seed *int64) ([][]float64, error) {
	if numAssets < 2 {
		return nil, fmt.Errorf("%w: need at least 2 assets, got %d", ErrInvalidParameters, numAssets)
	}
	if numSims < 1 || numSims > MaxSimulations {
		return nil, fmt.Errorf("%w: simulation count %d outside [1, %d]", ErrInvalidParameters, numSims, MaxSimulations)
	}

	var src rand.Source
	if seed != nil {
		src = rand.NewSource(*seed)
	} else {
		src = rand.NewSource(time.Now().UnixNano())
	}
	rng := rand.New(src)

	weights := make([][]float64, numSims)
	for i := range weights {
		row := make([]float64, numAssets)
		sum := 0.0
		for j := range row {
			row[j] = rng.Float64()
			sum += row[j]
		}
		// A row of all-zero draws has probability zero; guard regardless so
		// normalization can never divide by zero.
		if sum == 0 {
			for j := range row {
				row[j] = 1.0 / float64(numAssets)
			}
		} else {
			for j := range row {
				row[j] /= sum
			}
		}
		weights[i] = row
	}

	return weights, nil
}
