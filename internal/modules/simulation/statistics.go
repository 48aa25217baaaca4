package simulation

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// EstimateStatistics computes the annualized mean-return vector and the
// annualized sample covariance matrix of a log-return table. Daily means are
// scaled by 252 and covariances by the same single factor, consistent with
// variance scaling over independent periods. Deterministic, no randomness.
func EstimateStatistics(lt LogReturnTable) ([]float64, [][]float64, error) {
	numObs := lt.NumObservations()
	if numObs < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 return observations, got %d", ErrInsufficientHistory, numObs)
	}

	numAssets := len(lt.Symbols)

	// Column-major copies so gonum/stat can work on contiguous series.
	cols := make([][]float64, numAssets)
	for a := 0; a < numAssets; a++ {
		cols[a] = make([]float64, numObs)
		for t := 0; t < numObs; t++ {
			cols[a][t] = lt.Returns[t][a]
		}
	}

	means := make([]float64, numAssets)
	for a := 0; a < numAssets; a++ {
		means[a] = stat.Mean(cols[a], nil) * TradingDaysPerYear
	}

	cov := make([][]float64, numAssets)
	for i := range cov {
		cov[i] = make([]float64, numAssets)
	}
	for i := 0; i < numAssets; i++ {
		for j := i; j < numAssets; j++ {
			c := stat.Covariance(cols[i], cols[j], nil) * TradingDaysPerYear
			cov[i][j] = c
			cov[j][i] = c
		}
	}

	return means, cov, nil
}
