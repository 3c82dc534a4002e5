// Package marketdata reduces price history to the market-side inputs
// of the allocation pipeline: a sample covariance matrix and
// capitalization-proxy market weights.
package marketdata

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jleechris06/optimizeme/internal/database/repositories"
	"github.com/jleechris06/optimizeme/pkg/formulas"
	"github.com/jleechris06/optimizeme/pkg/matrix"
)

const (
	// historyDays is how much daily history feeds the covariance.
	historyDays = 365

	// cacheMaxAge is how long a cached price series stays fresh.
	cacheMaxAge = 24 * time.Hour

	rsiPeriod = 14
)

// PriceSource provides quotes and price history.
type PriceSource interface {
	LatestClose(ctx context.Context, symbol string) (float64, error)
	DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error)
}

// AssetDiagnostics carries per-asset indicator values for logging and
// the status endpoint. They never influence the allocation itself.
type AssetDiagnostics struct {
	RSI           *float64 `json:"rsi,omitempty"`
	AnnualizedVol float64  `json:"annualized_volatility"`
}

// Snapshot is the market state for a set of symbols, in input order.
type Snapshot struct {
	Symbols     []string
	Sigma       matrix.Matrix
	Weights     []float64
	Diagnostics map[string]AssetDiagnostics
}

// Service builds market snapshots, caching price history in sqlite.
type Service struct {
	prices PriceSource
	cache  *repositories.SnapshotRepository
	log    zerolog.Logger
}

// NewService creates a market data service. The cache may be nil, in
// which case every snapshot hits the price source.
func NewService(prices PriceSource, cache *repositories.SnapshotRepository, log zerolog.Logger) *Service {
	return &Service{
		prices: prices,
		cache:  cache,
		log:    log.With().Str("component", "marketdata").Logger(),
	}
}

// Snapshot builds the covariance matrix, market weights and per-asset
// diagnostics for the given symbols, in the given order.
func (s *Service) Snapshot(ctx context.Context, symbols []string) (Snapshot, error) {
	series := make([][]float64, len(symbols))
	weights := make([]float64, len(symbols))
	diags := make(map[string]AssetDiagnostics, len(symbols))

	for i, symbol := range symbols {
		closes, err := s.closes(ctx, symbol)
		if err != nil {
			return Snapshot{}, err
		}
		series[i] = closes

		// A failed quote contributes zero weight rather than failing
		// the snapshot; normalization redistributes to the others.
		latest, err := s.prices.LatestClose(ctx, symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to fetch latest quote")
			latest = 0
		}
		weights[i] = latest

		returns := formulas.CalculateReturns(closes)
		diags[symbol] = AssetDiagnostics{
			RSI:           formulas.CalculateRSI(closes, rsiPeriod),
			AnnualizedVol: formulas.AnnualizedVolatility(returns),
		}
	}

	snapshot := Snapshot{
		Symbols:     symbols,
		Sigma:       matrix.Matrix(formulas.CovarianceMatrix(series)),
		Weights:     formulas.NormalizeWeights(weights),
		Diagnostics: diags,
	}

	s.log.Info().
		Int("symbols", len(symbols)).
		Msg("Built market snapshot")

	return snapshot, nil
}

// closes returns the daily close series for a symbol, preferring the
// cache when fresh.
func (s *Service) closes(ctx context.Context, symbol string) ([]float64, error) {
	if s.cache != nil {
		cached, hit, err := s.cache.PriceHistory(symbol, cacheMaxAge)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Price cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	closes, err := s.prices.DailyCloses(ctx, symbol, historyDays)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SavePriceHistory(symbol, closes); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Price cache write failed")
		}
	}

	return closes, nil
}

// Refresh re-fetches the price history of every cached symbol. Used by
// the scheduled refresh job.
func (s *Service) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	symbols, err := s.cache.Symbols()
	if err != nil {
		return err
	}

	for _, symbol := range symbols {
		closes, err := s.prices.DailyCloses(ctx, symbol, historyDays)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Refresh fetch failed")
			continue
		}
		if err := s.cache.SavePriceHistory(symbol, closes); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Refresh save failed")
		}
	}

	s.log.Info().Int("symbols", len(symbols)).Msg("Refreshed price history cache")

	return nil
}
