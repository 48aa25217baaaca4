package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dailyFixture = `{
	"Time Series (Daily)": {
		"2024-01-04": {"4. close": "102.50"},
		"2024-01-02": {"4. close": "100.00"},
		"2024-01-03": {"4. close": "101.25"}
	}
}`

// TestNewClient tests client creation.
func TestNewClient(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	assert.NotNil(t, client)
	assert.Equal(t, "test-key", client.apiKey)
	assert.Equal(t, maxRequestsPerDay, client.GetRemainingRequests())
}

// TestRateLimiting tests the rate limiting functionality.
func TestRateLimiting(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	for i := 0; i < maxRequestsPerDay; i++ {
		remaining := client.GetRemainingRequests()
		assert.Equal(t, maxRequestsPerDay-i, remaining)
		err := client.checkRateLimit()
		require.NoError(t, err)
	}

	err := client.checkRateLimit()
	assert.Error(t, err)
	assert.IsType(t, ErrRateLimitExceeded{}, err)
}

// TestResetDailyCounter tests counter reset.
func TestResetDailyCounter(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	for i := 0; i < 10; i++ {
		_ = client.checkRateLimit()
	}
	assert.Equal(t, maxRequestsPerDay-10, client.GetRemainingRequests())

	client.ResetDailyCounter()
	assert.Equal(t, maxRequestsPerDay, client.GetRemainingRequests())
}

func TestGetDailySeries_ParsesAndSorts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		fmt.Fprint(w, dailyFixture)
	}))
	defer server.Close()

	client := NewClient("test-key", zerolog.Nop())
	client.SetBaseURL(server.URL)

	series, err := client.GetDailySeries(context.Background(), "aapl ")
	require.NoError(t, err)
	require.Len(t, series, 3)

	// Chronological order regardless of map iteration order.
	assert.Equal(t, "2024-01-02", series[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-01-04", series[2].Date.Format("2006-01-02"))
	assert.Equal(t, 100.00, series[0].Close)
	assert.Equal(t, 102.50, series[2].Close)
}

func TestGetDailySeries_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Error Message": "Invalid API call"}`)
	}))
	defer server.Close()

	client := NewClient("test-key", zerolog.Nop())
	client.SetBaseURL(server.URL)

	_, err := client.GetDailySeries(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider rejected")
}

func TestFetchAll_PartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "BAD" {
			fmt.Fprint(w, `{"Error Message": "unknown symbol"}`)
			return
		}
		fmt.Fprint(w, dailyFixture)
	}))
	defer server.Close()

	client := NewClient("test-key", zerolog.Nop())
	client.SetBaseURL(server.URL)

	data, failed, err := client.FetchAll(context.Background(), []string{"aapl", "AAPL", "bad", "msft"})
	require.NoError(t, err)

	// Duplicates collapse; the bad symbol fails without aborting the pass.
	assert.Len(t, data, 2)
	assert.Contains(t, data, "AAPL")
	assert.Contains(t, data, "MSFT")
	assert.Equal(t, []string{"BAD"}, failed)
}

func TestFetchAll_NoSymbols(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())
	_, _, err := client.FetchAll(context.Background(), []string{" ", ""})
	assert.Error(t, err)
}
