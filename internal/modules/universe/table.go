package universe

import (
	"fmt"
	"sort"
	"time"

	"github.com/aristath/frontier/internal/modules/simulation"
)

// BuildPriceTable assembles an aligned price table for the given symbols over
// [from, to]. Only dates where every requested symbol has a close are kept, so
// assets with different listing histories align on their common trading days.
// Symbols with no stored history in the window are reported back rather than
// failing the whole request.
func (h *HistoryDB) BuildPriceTable(symbols []string, from, to time.Time) (simulation.PriceTable, []string, error) {
	var table simulation.PriceTable

	series := make(map[string]map[int64]float64, len(symbols))
	var missing []string
	var kept []string

	for _, symbol := range symbols {
		prices, err := h.GetDailyPrices(symbol, from, to)
		if err != nil {
			return table, nil, fmt.Errorf("failed to load prices for %s: %w", symbol, err)
		}
		if len(prices) == 0 {
			missing = append(missing, symbol)
			continue
		}
		byDate := make(map[int64]float64, len(prices))
		for _, p := range prices {
			byDate[p.Date.Unix()] = p.Close
		}
		series[symbol] = byDate
		kept = append(kept, symbol)
	}

	if len(kept) == 0 {
		return table, missing, nil
	}

	// Intersect trading days across all kept symbols.
	var common []int64
	for date := range series[kept[0]] {
		present := true
		for _, symbol := range kept[1:] {
			if _, ok := series[symbol][date]; !ok {
				present = false
				break
			}
		}
		if present {
			common = append(common, date)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })

	table.Symbols = kept
	table.Dates = make([]time.Time, len(common))
	table.Closes = make([][]float64, len(common))
	for i, date := range common {
		table.Dates[i] = time.Unix(date, 0).UTC()
		row := make([]float64, len(kept))
		for j, symbol := range kept {
			row[j] = series[symbol][date]
		}
		table.Closes[i] = row
	}

	if len(missing) > 0 {
		h.log.Warn().Strs("missing", missing).Msg("Symbols excluded from price table")
	}

	return table, missing, nil
}
