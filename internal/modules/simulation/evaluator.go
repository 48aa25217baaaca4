package simulation

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// EvaluateEnsemble computes annualized return, risk and Sharpe ratio for every
// weight vector in the ensemble.
//
// The quadratic forms are evaluated in batch: returns come from a single
// W*mu product and risks from one W*Sigma product followed by per-row dot
// products, rather than an N-fold loop over w'Σw. The per-row tail is sharded
// across workers for large ensembles; sharding only splits disjoint row
// ranges, so outputs are identical to a sequential pass.
//
// Records whose risk is numerically zero are flagged Degenerate with a NaN
// Sharpe ratio; they are never valid candidates for selection.
func EvaluateEnsemble(weights [][]float64, means []float64, cov [][]float64, riskFreeRate float64) ([]SimulationRecord, int, error) {
	numSims := len(weights)
	numAssets := len(means)
	if numSims == 0 {
		return nil, 0, fmt.Errorf("%w: empty weight ensemble", ErrInvalidParameters)
	}
	if numAssets < 2 {
		return nil, 0, fmt.Errorf("%w: need at least 2 assets, got %d", ErrInvalidParameters, numAssets)
	}
	if len(cov) != numAssets {
		return nil, 0, fmt.Errorf("%w: covariance has %d rows, expected %d", ErrInvalidParameters, len(cov), numAssets)
	}
	for i, row := range cov {
		if len(row) != numAssets {
			return nil, 0, fmt.Errorf("%w: covariance row %d has %d columns, expected %d", ErrInvalidParameters, i, len(row), numAssets)
		}
	}

	// Pack the ensemble and covariance into dense matrices.
	wData := make([]float64, numSims*numAssets)
	for i, row := range weights {
		if len(row) != numAssets {
			return nil, 0, fmt.Errorf("%w: weight row %d has %d entries, expected %d", ErrInvalidParameters, i, len(row), numAssets)
		}
		copy(wData[i*numAssets:], row)
	}
	w := mat.NewDense(numSims, numAssets, wData)

	sData := make([]float64, numAssets*numAssets)
	for i, row := range cov {
		copy(sData[i*numAssets:], row)
	}
	sigma := mat.NewDense(numAssets, numAssets, sData)
	mu := mat.NewVecDense(numAssets, append([]float64(nil), means...))

	// returns = W * mu
	var rets mat.VecDense
	rets.MulVec(w, mu)

	// ws = W * Sigma; variance_i = ws_i . w_i
	var ws mat.Dense
	ws.Mul(w, sigma)

	records := make([]SimulationRecord, numSims)
	degenerate := make([]int64, shardCount(numSims))

	var wg sync.WaitGroup
	for s, bounds := range shards(numSims) {
		wg.Add(1)
		go func(shard int, lo, hi int) {
			defer wg.Done()
			var count int64
			for i := lo; i < hi; i++ {
				variance := mat.Dot(ws.RowView(i), w.RowView(i))
				risk := math.Sqrt(math.Max(variance, 0))
				ret := rets.AtVec(i)

				rec := SimulationRecord{
					Weights: weights[i],
					Return:  ret,
					Risk:    risk,
				}
				if risk <= riskEpsilon || math.IsNaN(risk) {
					rec.Degenerate = true
					rec.Sharpe = math.NaN()
					count++
				} else {
					rec.Sharpe = (ret - riskFreeRate) / risk
				}
				records[i] = rec
			}
			degenerate[shard] = count
		}(s, bounds[0], bounds[1])
	}
	wg.Wait()

	total := 0
	for _, c := range degenerate {
		total += int(c)
	}
	return records, total, nil
}

// shardCount picks the number of row shards for an ensemble. Small ensembles
// stay on one goroutine; larger ones use up to GOMAXPROCS shards.
func shardCount(numSims int) int {
	const minRowsPerShard = 2048
	n := numSims / minRowsPerShard
	if n < 1 {
		return 1
	}
	if max := runtime.GOMAXPROCS(0); n > max {
		return max
	}
	return n
}

// shards splits [0, numSims) into contiguous half-open ranges.
func shards(numSims int) [][2]int {
	n := shardCount(numSims)
	out := make([][2]int, 0, n)
	size := (numSims + n - 1) / n
	for lo := 0; lo < numSims; lo += size {
		hi := lo + size
		if hi > numSims {
			hi = numSims
		}
		out = append(out, [2]int{lo, hi})
	}
	return out
}
