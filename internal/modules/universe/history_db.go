// Package universe maintains the investment universe's historical price data
// and assembles the aligned price tables consumed by the simulation engine.
package universe

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// HistoryDB provides access to historical price data
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryDB creates a new history database accessor and ensures its schema
// exists.
func NewHistoryDB(db *sql.DB, log zerolog.Logger) (*HistoryDB, error) {
	h := &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}
	if err := h.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return h, nil
}

func (h *HistoryDB) initSchema() error {
	_, err := h.db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_prices (
			symbol TEXT NOT NULL,
			date   INTEGER NOT NULL,
			close  REAL NOT NULL,
			PRIMARY KEY (symbol, date)
		);
		CREATE INDEX IF NOT EXISTS idx_daily_prices_date ON daily_prices (date);
	`)
	return err
}

// DailyPrice represents one closing price observation
type DailyPrice struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// SyncDailyPrices upserts a symbol's price series. Existing rows for the same
// (symbol, date) are replaced, so repeated syncs converge on the provider's
// latest view.
func (h *HistoryDB) SyncDailyPrices(symbol string, prices []DailyPrice) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO daily_prices (symbol, date, close) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if p.Close <= 0 {
			h.log.Warn().Str("symbol", symbol).Time("date", p.Date).Float64("close", p.Close).Msg("Skipping non-positive close")
			continue
		}
		if _, err := stmt.Exec(symbol, p.Date.UTC().Truncate(24*time.Hour).Unix(), p.Close); err != nil {
			return fmt.Errorf("failed to upsert price for %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price sync: %w", err)
	}

	h.log.Debug().Str("symbol", symbol).Int("points", len(prices)).Msg("Synced daily prices")
	return nil
}

// GetDailyPrices fetches a symbol's closes within [from, to], chronologically.
func (h *HistoryDB) GetDailyPrices(symbol string, from, to time.Time) ([]DailyPrice, error) {
	rows, err := h.db.Query(
		`SELECT date, close FROM daily_prices WHERE symbol = ? AND date >= ? AND date <= ? ORDER BY date ASC`,
		symbol, from.UTC().Unix(), to.UTC().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var prices []DailyPrice
	for rows.Next() {
		var dateUnix int64
		var p DailyPrice
		if err := rows.Scan(&dateUnix, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		p.Date = time.Unix(dateUnix, 0).UTC()
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	return prices, nil
}

// ListSymbols returns every symbol with stored history, sorted.
func (h *HistoryDB) ListSymbols() ([]string, error) {
	rows, err := h.db.Query(`SELECT DISTINCT symbol FROM daily_prices ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// CountObservations returns the number of stored closes for a symbol.
func (h *HistoryDB) CountObservations(symbol string) (int, error) {
	var n int
	err := h.db.QueryRow(`SELECT COUNT(*) FROM daily_prices WHERE symbol = ?`, symbol).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return n, nil
}
