// Package simulation implements the Monte Carlo portfolio simulation engine.
//
// The engine transforms an aligned table of historical closing prices into an
// ensemble of randomly weighted long-only portfolios, evaluates annualized
// return, risk and Sharpe ratio for each, and selects the portfolio with the
// highest Sharpe ratio. Every invocation is a pure function over its inputs;
// no state is shared between runs, so callers may run simulations concurrently
// without coordination.
package simulation

import "time"

// TradingDaysPerYear is the annualization factor applied to daily statistics.
// Means scale linearly, covariances by the same single factor.
const TradingDaysPerYear = 252.0

// MaxSimulations bounds the requested ensemble size. Typical requests are in
// the 1,000-50,000 range; anything beyond the cap is rejected as invalid.
const MaxSimulations = 200000

// riskEpsilon is the threshold below which a portfolio risk is treated as
// numerically zero and the record flagged as degenerate.
const riskEpsilon = 1e-12

// PriceTable is an aligned table of closing prices: one row per date, one
// column per symbol. All symbols share the same date index. The engine only
// reads it; ownership stays with the caller.
type PriceTable struct {
	Symbols []string
	Dates   []time.Time
	Closes  [][]float64 // Closes[t][a] = close of Symbols[a] on Dates[t]
}

// NumDates returns the number of time points in the table.
func (pt PriceTable) NumDates() int { return len(pt.Closes) }

// NumAssets returns the number of asset columns in the table.
func (pt PriceTable) NumAssets() int { return len(pt.Symbols) }

// LogReturnTable holds per-period log returns, one fewer row than the price
// table it was derived from (the earliest date has no predecessor). Rows where
// any entry is NaN or Inf are excluded during construction.
type LogReturnTable struct {
	Symbols []string
	Dates   []time.Time
	Returns [][]float64 // Returns[t][a] = ln(p[t][a] / p[t-1][a])
}

// NumObservations returns the number of return rows.
func (lt LogReturnTable) NumObservations() int { return len(lt.Returns) }

// SimulationRecord is one sampled portfolio paired with its annualized
// statistics. Weights are ordered like the input table's symbol columns.
// Degenerate marks records whose risk is numerically zero; their Sharpe ratio
// is undefined and they are excluded from optimum selection.
type SimulationRecord struct {
	Weights    []float64 `json:"weights"`
	Return     float64   `json:"return"`
	Risk       float64   `json:"risk"`
	Sharpe     float64   `json:"sharpe"`
	Degenerate bool      `json:"degenerate,omitempty"`
}

// Request describes one simulation run over an already-aligned price table.
// Seed is optional: nil means each call is independently randomized, a fixed
// value makes the sampled ensemble bit-reproducible.
type Request struct {
	Prices       PriceTable
	Simulations  int
	RiskFreeRate float64
	Seed         *int64
}

// Result is the complete outcome of one simulation run. Optimal is a view
// into Records (the record at OptimalIndex), not an independent copy.
type Result struct {
	RunID        string             `json:"run_id"`
	Symbols      []string           `json:"symbols"`
	Records      []SimulationRecord `json:"records"`
	OptimalIndex int                `json:"optimal_index"`
	Optimal      *SimulationRecord  `json:"optimal"`
	MeanReturns  []float64          `json:"mean_returns"`
	Covariance   [][]float64        `json:"covariance"`
	Degenerate   int                `json:"degenerate_count"`
	Observations int                `json:"observations"`
}
