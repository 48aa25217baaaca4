package simulation

import "fmt"

// SelectOptimal returns the index of the record with the maximum Sharpe ratio.
// Degenerate records (undefined Sharpe) are skipped; ties resolve to the first
// index achieving the maximum, so the choice is deterministic given the
// ensemble order. Returns ErrNoValidCandidate when every record is degenerate.
func SelectOptimal(records []SimulationRecord) (int, error) {
	best := -1
	for i, rec := range records {
		if rec.Degenerate {
			continue
		}
		if best == -1 || rec.Sharpe > records[best].Sharpe {
			best = i
		}
	}
	if best == -1 {
		return 0, fmt.Errorf("%w: all %d simulated portfolios have degenerate risk", ErrNoValidCandidate, len(records))
	}
	return best, nil
}
