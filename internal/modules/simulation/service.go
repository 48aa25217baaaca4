package simulation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service runs the full simulation pipeline: prices -> log returns ->
// annualized statistics -> weight ensemble -> evaluated ensemble -> optimum.
// It holds no mutable state between runs.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new simulation service.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("component", "simulation").Logger(),
	}
}

// Run executes one simulation request and returns the evaluated ensemble plus
// the max-Sharpe optimum. Data flows strictly forward; every intermediate is
// request-scoped and discarded when the call returns.
func (s *Service) Run(req Request) (*Result, error) {
	if req.Simulations < 1 || req.Simulations > MaxSimulations {
		return nil, fmt.Errorf("%w: simulation count %d outside [1, %d]", ErrInvalidParameters, req.Simulations, MaxSimulations)
	}
	if req.Prices.NumAssets() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 assets, got %d", ErrInvalidParameters, req.Prices.NumAssets())
	}

	runID := uuid.New().String()

	returns, err := LogReturns(req.Prices)
	if err != nil {
		return nil, err
	}

	means, cov, err := EstimateStatistics(returns)
	if err != nil {
		return nil, err
	}

	weights, err := SampleWeights(req.Prices.NumAssets(), req.Simulations, req.Seed)
	if err != nil {
		return nil, err
	}

	records, degenerate, err := EvaluateEnsemble(weights, means, cov, req.RiskFreeRate)
	if err != nil {
		return nil, err
	}
	if degenerate > 0 {
		s.log.Warn().
			Str("run_id", runID).
			Int("degenerate", degenerate).
			Int("simulations", req.Simulations).
			Msg("Excluded degenerate portfolios from selection")
	}

	optimal, err := SelectOptimal(records)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("run_id", runID).
		Int("simulations", req.Simulations).
		Int("assets", req.Prices.NumAssets()).
		Int("observations", returns.NumObservations()).
		Float64("optimal_sharpe", records[optimal].Sharpe).
		Msg("Simulation complete")

	return &Result{
		RunID:        runID,
		Symbols:      req.Prices.Symbols,
		Records:      records,
		OptimalIndex: optimal,
		Optimal:      &records[optimal],
		MeanReturns:  means,
		Covariance:   cov,
		Degenerate:   degenerate,
		Observations: returns.NumObservations(),
	}, nil
}
