package marketdata

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPrices struct {
	closes  map[string][]float64
	latest  map[string]float64
	failing map[string]bool
}

func (s *stubPrices) LatestClose(_ context.Context, symbol string) (float64, error) {
	if s.failing[symbol] {
		return 0, fmt.Errorf("quote failed for %s", symbol)
	}
	return s.latest[symbol], nil
}

func (s *stubPrices) DailyCloses(_ context.Context, symbol string, _ int) ([]float64, error) {
	closes, ok := s.closes[symbol]
	if !ok {
		return nil, fmt.Errorf("no history for %s", symbol)
	}
	return closes, nil
}

func TestSnapshot(t *testing.T) {
	prices := &stubPrices{
		closes: map[string][]float64{
			"A": {1, 2, 3, 4},
			"B": {2, 4, 6, 8},
		},
		latest: map[string]float64{"A": 100, "B": 300},
	}
	svc := NewService(prices, nil, zerolog.Nop())

	snap, err := svc.Snapshot(context.Background(), []string{"A", "B"})
	require.NoError(t, err)

	// Weights normalized from latest closes.
	require.Len(t, snap.Weights, 2)
	assert.InDelta(t, 0.25, snap.Weights[0], 1e-12)
	assert.InDelta(t, 0.75, snap.Weights[1], 1e-12)

	// Sample covariance, symmetric.
	require.Equal(t, 2, snap.Sigma.Rows())
	assert.InDelta(t, 5.0/3.0, snap.Sigma[0][0], 1e-12)
	assert.InDelta(t, 10.0/3.0, snap.Sigma[0][1], 1e-12)
	assert.Equal(t, snap.Sigma[0][1], snap.Sigma[1][0])

	// Diagnostics present per symbol (RSI nil on short series).
	require.Contains(t, snap.Diagnostics, "A")
	assert.Nil(t, snap.Diagnostics["A"].RSI)
	assert.Greater(t, snap.Diagnostics["A"].AnnualizedVol, 0.0)
}

func TestSnapshotQuoteFailureZeroWeight(t *testing.T) {
	prices := &stubPrices{
		closes: map[string][]float64{
			"A": {1, 2, 3},
			"B": {3, 2, 1},
		},
		latest:  map[string]float64{"A": 100},
		failing: map[string]bool{"B": true},
	}
	svc := NewService(prices, nil, zerolog.Nop())

	snap, err := svc.Snapshot(context.Background(), []string{"A", "B"})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, snap.Weights[0], 1e-12)
	assert.Zero(t, snap.Weights[1])
}

func TestSnapshotHistoryFailure(t *testing.T) {
	prices := &stubPrices{closes: map[string][]float64{}}
	svc := NewService(prices, nil, zerolog.Nop())

	_, err := svc.Snapshot(context.Background(), []string{"MISSING"})
	assert.Error(t, err)
}
