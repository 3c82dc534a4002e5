// Package blacklitterman blends market-implied equilibrium returns with
// ranked views into a posterior expected-return vector.
package blacklitterman

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jleechris06/optimizeme/internal/modules/views"
	"github.com/jleechris06/optimizeme/pkg/matrix"
)

// ErrInvalidInput flags dimension or emptiness violations in the
// engine's inputs.
var ErrInvalidInput = errors.New("invalid black-litterman input")

// MarketState holds the market-side inputs of the blend.
type MarketState struct {
	// Sigma is the n×n sample covariance across assets.
	Sigma matrix.Matrix
	// Weights are the market-capitalization weights, length n,
	// normally summing to 1.
	Weights []float64
	// Tau scales confidence in the equilibrium estimate relative to
	// the sample covariance. Small positive, typically 0.025.
	Tau float64
}

// Engine computes posterior returns using the matrix kernel.
type Engine struct {
	kernel *matrix.Kernel
	log    zerolog.Logger
}

// NewEngine creates a Black-Litterman engine.
func NewEngine(kernel *matrix.Kernel, log zerolog.Logger) *Engine {
	return &Engine{
		kernel: kernel,
		log:    log.With().Str("component", "black_litterman").Logger(),
	}
}

// Posterior computes the posterior expected-return vector:
//
//	E[R] = [(τΣ)⁻¹ + PᵗΩ⁻¹P]⁻¹ · [(τΣ)⁻¹π + PᵗΩ⁻¹Q]
//
// with π = τΣ·w_m. A near-singular inversion at any step is the
// dominant failure mode; it surfaces as an error, never a panic.
func (e *Engine) Posterior(market MarketState, vs views.ViewSet) ([]float64, error) {
	if err := e.validate(market, vs); err != nil {
		e.log.Warn().Err(err).Msg("Rejecting black-litterman input")
		return nil, err
	}

	tauSigma := market.Sigma.Scale(market.Tau)

	// Implied equilibrium excess returns.
	pi, err := e.kernel.MultiplyVector(tauSigma, market.Weights)
	if err != nil {
		return nil, fmt.Errorf("equilibrium returns: %w", err)
	}

	tauSigmaInv, err := e.kernel.Invert(tauSigma)
	if err != nil {
		return nil, fmt.Errorf("invert tau-scaled covariance: %w", err)
	}

	omegaInv, err := e.kernel.Invert(vs.Omega)
	if err != nil {
		return nil, fmt.Errorf("invert view uncertainty: %w", err)
	}

	pT, err := e.kernel.Transpose(vs.P)
	if err != nil {
		return nil, fmt.Errorf("transpose views matrix: %w", err)
	}

	ptOmegaInv, err := e.kernel.Multiply(pT, omegaInv)
	if err != nil {
		return nil, fmt.Errorf("P' * omega^-1: %w", err)
	}

	viewPrecision, err := e.kernel.Multiply(ptOmegaInv, vs.P)
	if err != nil {
		return nil, fmt.Errorf("P' * omega^-1 * P: %w", err)
	}

	posteriorPrecision, err := tauSigmaInv.Add(viewPrecision)
	if err != nil {
		return nil, fmt.Errorf("posterior precision: %w", err)
	}

	posteriorCov, err := e.kernel.Invert(posteriorPrecision)
	if err != nil {
		return nil, fmt.Errorf("invert posterior precision: %w", err)
	}

	// View-side information: P'Ω⁻¹Q as a column.
	viewTerm, err := e.kernel.Multiply(ptOmegaInv, matrix.ColumnVector(vs.Q))
	if err != nil {
		return nil, fmt.Errorf("view information term: %w", err)
	}

	// Market-side information: (τΣ)⁻¹π.
	marketTerm, err := e.kernel.MultiplyVector(tauSigmaInv, pi)
	if err != nil {
		return nil, fmt.Errorf("market information term: %w", err)
	}

	combined := make([]float64, len(marketTerm))
	for i := range combined {
		combined[i] = marketTerm[i] + viewTerm[i][0]
	}

	posterior, err := e.kernel.MultiplyVector(posteriorCov, combined)
	if err != nil {
		return nil, fmt.Errorf("posterior mean: %w", err)
	}

	e.log.Debug().
		Int("assets", len(posterior)).
		Int("views", vs.Views()).
		Float64("tau", market.Tau).
		Msg("Computed posterior returns")

	return posterior, nil
}

// validate enforces the dimensional contract between the market state
// and the view set.
func (e *Engine) validate(market MarketState, vs views.ViewSet) error {
	if market.Sigma.IsEmpty() || len(market.Weights) == 0 || vs.P.IsEmpty() || len(vs.Q) == 0 || vs.Omega.IsEmpty() {
		return fmt.Errorf("empty input: %w", ErrInvalidInput)
	}

	n := market.Sigma.Rows()
	if market.Sigma.Cols() != n {
		return fmt.Errorf("covariance matrix must be square, got %dx%d: %w",
			market.Sigma.Rows(), market.Sigma.Cols(), ErrInvalidInput)
	}
	if len(market.Weights) != n {
		return fmt.Errorf("market weights length %d does not match %d assets: %w",
			len(market.Weights), n, ErrInvalidInput)
	}
	if vs.P.Cols() != n {
		return fmt.Errorf("views matrix has %d columns for %d assets: %w",
			vs.P.Cols(), n, ErrInvalidInput)
	}

	k := vs.P.Rows()
	if vs.Omega.Rows() != k || vs.Omega.Cols() != k || len(vs.Q) != k {
		return fmt.Errorf("view dimensions mismatch (P rows %d, Q %d, omega %dx%d): %w",
			k, len(vs.Q), vs.Omega.Rows(), vs.Omega.Cols(), ErrInvalidInput)
	}

	return nil
}
