package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/frontier/internal/clients/marketdata"
)

// PriceFetcher fetches daily close series from a market data provider.
type PriceFetcher interface {
	FetchAll(ctx context.Context, symbols []string) (map[string][]marketdata.DailyClose, []string, error)
}

// SyncService pulls provider data into the history database.
type SyncService struct {
	history *HistoryDB
	fetcher PriceFetcher
	log     zerolog.Logger
}

// NewSyncService creates a new price sync service.
func NewSyncService(history *HistoryDB, fetcher PriceFetcher, log zerolog.Logger) *SyncService {
	return &SyncService{
		history: history,
		fetcher: fetcher,
		log:     log.With().Str("component", "universe_sync").Logger(),
	}
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	Synced   []string  `json:"synced"`
	Failed   []string  `json:"failed"`
	Duration float64   `json:"duration_seconds"`
	At       time.Time `json:"at"`
}

// Sync fetches and stores the latest daily closes for the given symbols.
// Provider failures for individual symbols are reported in the result, not
// returned as errors.
func (s *SyncService) Sync(ctx context.Context, symbols []string) (*SyncResult, error) {
	start := time.Now()

	series, failed, err := s.fetcher.FetchAll(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price data: %w", err)
	}

	result := &SyncResult{Failed: failed, At: start.UTC()}
	for symbol, closes := range series {
		prices := make([]DailyPrice, len(closes))
		for i, c := range closes {
			prices[i] = DailyPrice{Date: c.Date, Close: c.Close}
		}
		if err := s.history.SyncDailyPrices(symbol, prices); err != nil {
			s.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to store price series")
			result.Failed = append(result.Failed, symbol)
			continue
		}
		result.Synced = append(result.Synced, symbol)
	}
	result.Duration = time.Since(start).Seconds()

	s.log.Info().
		Int("synced", len(result.Synced)).
		Int("failed", len(result.Failed)).
		Float64("duration_seconds", result.Duration).
		Msg("Universe sync complete")

	return result, nil
}
