package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOptimal_MaxSharpe(t *testing.T) {
	records := []SimulationRecord{
		{Sharpe: 0.8},
		{Sharpe: 1.4},
		{Sharpe: 1.1},
	}

	idx, err := SelectOptimal(records)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	for _, rec := range records {
		assert.GreaterOrEqual(t, records[idx].Sharpe, rec.Sharpe)
	}
}

func TestSelectOptimal_TieBreaksToFirstIndex(t *testing.T) {
	records := []SimulationRecord{
		{Sharpe: 0.5},
		{Sharpe: 1.2},
		{Sharpe: 1.2},
		{Sharpe: 1.2},
	}

	idx, err := SelectOptimal(records)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestSelectOptimal_SkipsDegenerateRecords(t *testing.T) {
	records := []SimulationRecord{
		{Sharpe: math.NaN(), Degenerate: true},
		{Sharpe: 0.3},
		{Sharpe: math.NaN(), Degenerate: true},
		{Sharpe: 0.9},
	}

	idx, err := SelectOptimal(records)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)
}

func TestSelectOptimal_NoValidCandidate(t *testing.T) {
	records := []SimulationRecord{
		{Sharpe: math.NaN(), Degenerate: true},
		{Sharpe: math.NaN(), Degenerate: true},
	}

	_, err := SelectOptimal(records)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoValidCandidate)

	_, err = SelectOptimal(nil)
	assert.ErrorIs(t, err, ErrNoValidCandidate)
}
