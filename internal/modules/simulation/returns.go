package simulation

import (
	"fmt"
	"math"
	"time"
)

// LogReturns converts an aligned price table into a log-return table.
// Entry [t][a] is ln(p[t][a] / p[t-1][a]); the earliest date is dropped since
// it has no predecessor. Non-positive prices make the logarithm undefined and
// are rejected with ErrInvalidInput rather than propagated as NaN. Rows that
// still produce a NaN or Inf entry are excluded from the output.
func LogReturns(pt PriceTable) (LogReturnTable, error) {
	if pt.NumAssets() < 2 {
		return LogReturnTable{}, fmt.Errorf("%w: need at least 2 assets, got %d", ErrInvalidInput, pt.NumAssets())
	}
	if pt.NumDates() < 2 {
		return LogReturnTable{}, fmt.Errorf("%w: need at least 2 dates, got %d", ErrInvalidInput, pt.NumDates())
	}
	if len(pt.Dates) != len(pt.Closes) {
		return LogReturnTable{}, fmt.Errorf("%w: %d dates but %d price rows", ErrInvalidInput, len(pt.Dates), len(pt.Closes))
	}

	numAssets := pt.NumAssets()
	for t, row := range pt.Closes {
		if len(row) != numAssets {
			return LogReturnTable{}, fmt.Errorf("%w: price row %d has %d columns, expected %d", ErrInvalidInput, t, len(row), numAssets)
		}
		for a, price := range row {
			if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
				return LogReturnTable{}, fmt.Errorf("%w: non-positive price %v for %s at row %d", ErrInvalidInput, price, pt.Symbols[a], t)
			}
		}
	}

	out := LogReturnTable{
		Symbols: pt.Symbols,
		Dates:   make([]time.Time, 0, pt.NumDates()-1),
		Returns: make([][]float64, 0, pt.NumDates()-1),
	}

	for t := 1; t < pt.NumDates(); t++ {
		row := make([]float64, numAssets)
		valid := true
		for a := 0; a < numAssets; a++ {
			r := math.Log(pt.Closes[t][a] / pt.Closes[t-1][a])
			if math.IsNaN(r) || math.IsInf(r, 0) {
				valid = false
				break
			}
			row[a] = r
		}
		if !valid {
			continue
		}
		out.Returns = append(out.Returns, row)
		if t < len(pt.Dates) {
			out.Dates = append(out.Dates, pt.Dates[t])
		}
	}

	return out, nil
}
