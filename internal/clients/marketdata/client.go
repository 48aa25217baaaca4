// Package marketdata fetches historical daily closing prices from an Alpha
// Vantage compatible HTTP API. It is the upstream collaborator of the
// simulation engine: it resolves symbols to closing-price series, tolerates
// per-symbol failure, and leaves alignment to the price history store.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/frontier/internal/modules/calculations"
)

const (
	defaultBaseURL = "https://www.alphavantage.co"

	// Free-tier daily request allowance.
	maxRequestsPerDay = 25

	// Concurrent per-symbol fetches during a sync pass.
	fetchConcurrency = 4
)

// ErrRateLimitExceeded is returned when the daily request allowance is spent.
type ErrRateLimitExceeded struct {
	Remaining int
}

func (e ErrRateLimitExceeded) Error() string {
	return fmt.Sprintf("market data rate limit exceeded (%d requests remaining today)", e.Remaining)
}

// DailyClose is one closing price observation.
type DailyClose struct {
	Date  time.Time `msgpack:"date"`
	Close float64   `msgpack:"close"`
}

// Client fetches daily price series with rate limiting and a persistent
// response cache. The cache is optional; a nil cache disables it.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *calculations.Cache
	log        zerolog.Logger

	mu            sync.Mutex
	requestsToday int
	resetDate     string // YYYY-MM-DD of the current counting window
}

// NewClient creates a new market data client.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("client", "marketdata").Logger(),
		resetDate:  time.Now().UTC().Format("2006-01-02"),
	}
}

// SetBaseURL overrides the API endpoint. Used by tests and self-hosted proxies.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// SetCache attaches a persistent response cache.
func (c *Client) SetCache(cache *calculations.Cache) { c.cache = cache }

// GetRemainingRequests returns how many API requests are left today.
func (c *Client) GetRemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rolloverLocked()
	return maxRequestsPerDay - c.requestsToday
}

// ResetDailyCounter clears the request counter. Exposed for tests and for the
// maintenance job that runs at provider-midnight.
func (c *Client) ResetDailyCounter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestsToday = 0
	c.resetDate = time.Now().UTC().Format("2006-01-02")
}

// checkRateLimit consumes one request slot or fails.
func (c *Client) checkRateLimit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rolloverLocked()
	if c.requestsToday >= maxRequestsPerDay {
		return ErrRateLimitExceeded{Remaining: 0}
	}
	c.requestsToday++
	return nil
}

func (c *Client) rolloverLocked() {
	today := time.Now().UTC().Format("2006-01-02")
	if today != c.resetDate {
		c.requestsToday = 0
		c.resetDate = today
	}
}

// dailyResponse mirrors the provider's TIME_SERIES_DAILY payload.
type dailyResponse struct {
	Series map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
	Note  string `json:"Note"`
	Error string `json:"Error Message"`
}

// GetDailySeries fetches the full daily close series for one symbol, sorted
// chronologically. Cached responses are served without touching the API.
func (c *Client) GetDailySeries(ctx context.Context, symbol string) ([]DailyClose, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}

	if c.cache != nil {
		var cached []DailyClose
		if c.cache.Get("marketdata", symbol, &cached) {
			c.log.Debug().Str("symbol", symbol).Int("points", len(cached)).Msg("Cache hit")
			return cached, nil
		}
	}

	if err := c.checkRateLimit(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", "full")
	q.Set("apikey", c.apiKey)
	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", symbol, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, symbol)
	}

	var payload dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response for %s: %w", symbol, err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("provider rejected %s: %s", symbol, payload.Error)
	}
	if payload.Note != "" {
		return nil, fmt.Errorf("provider throttled %s: %s", symbol, payload.Note)
	}
	if len(payload.Series) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	series := make([]DailyClose, 0, len(payload.Series))
	for dateStr, point := range payload.Series {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.log.Warn().Str("symbol", symbol).Str("date", dateStr).Msg("Skipping unparseable date")
			continue
		}
		close, err := strconv.ParseFloat(point.Close, 64)
		if err != nil || close <= 0 {
			c.log.Warn().Str("symbol", symbol).Str("date", dateStr).Msg("Skipping unusable close price")
			continue
		}
		series = append(series, DailyClose{Date: date, Close: close})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	if c.cache != nil {
		if err := c.cache.Set("marketdata", symbol, series, calculations.TTLMarketData); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache price series")
		}
	}

	c.log.Debug().Str("symbol", symbol).Int("points", len(series)).Msg("Fetched daily series")
	return series, nil
}

// FetchAll fetches series for every symbol, a few at a time. Symbols are
// de-duplicated and upper-cased first. Per-symbol failures do not abort the
// pass; the failed symbols are returned alongside the data so the caller can
// decide whether enough of the universe survived.
func (c *Client) FetchAll(ctx context.Context, symbols []string) (map[string][]DailyClose, []string, error) {
	seen := make(map[string]bool)
	var cleaned []string
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		cleaned = append(cleaned, sym)
	}
	if len(cleaned) == 0 {
		return nil, nil, fmt.Errorf("no symbols to fetch")
	}

	var mu sync.Mutex
	data := make(map[string][]DailyClose, len(cleaned))
	var failed []string

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for _, symbol := range cleaned {
		symbol := symbol
		g.Go(func() error {
			series, err := c.GetDailySeries(ctx, symbol)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to fetch symbol")
				failed = append(failed, symbol)
				return nil
			}
			data[symbol] = series
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Strings(failed)
	return data, failed, nil
}
