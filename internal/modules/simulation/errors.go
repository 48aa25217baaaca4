package simulation

import "errors"

// Engine error taxonomy. Structural problems are detected early and reported
// immediately; degenerate records are handled locally by exclusion from the
// arg-max scan and only escalate to ErrNoValidCandidate when nothing valid
// remains. Callers match with errors.Is.
var (
	// ErrInvalidInput covers malformed price tables: fewer than 2 asset
	// columns, fewer than 2 dates, ragged rows, or non-positive prices.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientHistory means fewer than 2 usable return observations
	// survived, leaving the sample covariance undefined.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrInvalidParameters covers caller-supplied parameters outside their
	// allowed range (simulation count, asset count).
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrNoValidCandidate means every simulated portfolio had degenerate
	// risk, so no optimum can be selected.
	ErrNoValidCandidate = errors.New("no valid candidate")
)
