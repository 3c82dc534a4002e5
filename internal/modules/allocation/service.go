// Package allocation orchestrates the full pipeline: fundamentals and
// sentiment per asset, signal aggregation, view encoding, the
// Black-Litterman blend and mean-variance weights.
package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jleechris06/optimizeme/internal/modules/blacklitterman"
	"github.com/jleechris06/optimizeme/internal/modules/marketdata"
	"github.com/jleechris06/optimizeme/internal/modules/optimization"
	"github.com/jleechris06/optimizeme/internal/modules/signals"
	"github.com/jleechris06/optimizeme/internal/modules/views"
)

// ErrNoSymbols is returned when a run is requested with no assets.
var ErrNoSymbols = errors.New("no symbols to allocate")

// FundamentalsSource reduces a company's filings to the two trusted
// ratios. Implementations return nil fields for untrusted data rather
// than erroring.
type FundamentalsSource interface {
	Fundamentals(ctx context.Context, symbol string) (signals.Fundamentals, error)
}

// SentimentSource returns one signal per scored article for a symbol.
type SentimentSource interface {
	ArticleSentiments(ctx context.Context, symbol string) ([]signals.Signal, error)
}

// MarketSource reduces price history to covariance and market weights
// for symbols in the given order.
type MarketSource interface {
	Snapshot(ctx context.Context, symbols []string) (marketdata.Snapshot, error)
}

// Service runs the allocation pipeline.
type Service struct {
	fundamentals FundamentalsSource
	sentiment    SentimentSource
	market       MarketSource
	builder      *views.Builder
	engine       *blacklitterman.Engine
	optimizer    *optimization.Optimizer
	tau          float64
	log          zerolog.Logger
}

// NewService wires the pipeline together.
func NewService(
	fundamentals FundamentalsSource,
	sentiment SentimentSource,
	market MarketSource,
	builder *views.Builder,
	engine *blacklitterman.Engine,
	optimizer *optimization.Optimizer,
	tau float64,
	log zerolog.Logger,
) *Service {
	return &Service{
		fundamentals: fundamentals,
		sentiment:    sentiment,
		market:       market,
		builder:      builder,
		engine:       engine,
		optimizer:    optimizer,
		tau:          tau,
		log:          log.With().Str("component", "allocation").Logger(),
	}
}

// Allocate ranks the symbols by blended signal and turns the ranking
// into portfolio weights. Any stage failure surfaces as an error the
// caller treats as "insufficient information for this input".
func (s *Service) Allocate(ctx context.Context, symbols []string) (*Result, error) {
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}

	ranked := make([]views.RankedAsset, 0, len(symbols))
	scalars := make(map[string]float64, len(symbols))

	for _, symbol := range symbols {
		scalar, err := s.scalarSignal(ctx, symbol)
		if err != nil {
			// A symbol with no usable vectors at all is dropped, not fatal.
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Dropping symbol from ranking")
			continue
		}
		ranked = append(ranked, views.RankedAsset{Symbol: symbol, ExpectedReturn: scalar})
		scalars[symbol] = scalar
	}

	viewSet, err := s.builder.Build(ranked)
	if err != nil {
		return nil, fmt.Errorf("build views: %w", err)
	}

	// Market data in sorted view order so everything downstream aligns.
	snapshot, err := s.market.Snapshot(ctx, viewSet.Order)
	if err != nil {
		return nil, fmt.Errorf("market snapshot: %w", err)
	}

	posterior, err := s.engine.Posterior(blacklitterman.MarketState{
		Sigma:   snapshot.Sigma,
		Weights: snapshot.Weights,
		Tau:     s.tau,
	}, viewSet)
	if err != nil {
		return nil, fmt.Errorf("posterior returns: %w", err)
	}

	weights, err := s.optimizer.MeanVariance(snapshot.Sigma, posterior)
	if err != nil {
		return nil, fmt.Errorf("mean-variance weights: %w", err)
	}

	result := &Result{
		Timestamp:        time.Now().UTC(),
		Order:            viewSet.Order,
		Weights:          weights,
		PosteriorReturns: posterior,
		ScalarSignals:    scalars,
		Diagnostics:      snapshot.Diagnostics,
	}

	s.log.Info().
		Int("symbols", len(viewSet.Order)).
		Msg("Allocation run complete")

	return result, nil
}

// scalarSignal blends a symbol's article sentiment with its two
// fundamental encodings and reduces the mean to the ranking scalar.
func (s *Service) scalarSignal(ctx context.Context, symbol string) (float64, error) {
	var sigs []signals.Signal

	articles, err := s.sentiment.ArticleSentiments(ctx, symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Sentiment unavailable")
	} else {
		sigs = append(sigs, articles...)
	}

	fundamentals, err := s.fundamentals.Fundamentals(ctx, symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Fundamentals unavailable")
		// Missing fundamentals still contribute zero-information
		// vectors, matching the absent-value encoding.
		fundamentals = signals.Fundamentals{}
	}
	sigs = append(sigs, signals.EncodeFundamentals(fundamentals)...)

	blended, err := signals.Aggregate(sigs)
	if err != nil {
		return 0, err
	}

	s.log.Debug().
		Str("symbol", symbol).
		Int("signals", len(sigs)).
		Float64("bad", blended.Bad).
		Float64("neutral", blended.Neutral).
		Float64("good", blended.Good).
		Msg("Blended signal")

	return blended.ExpectedReturn(), nil
}
