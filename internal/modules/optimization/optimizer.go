// Package optimization turns a covariance matrix and an expected-return
// vector into normalized portfolio weights via mean-variance
// optimization.
package optimization

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/jleechris06/optimizeme/pkg/matrix"
)

// ErrInvalidInput flags dimension or emptiness violations.
var ErrInvalidInput = errors.New("invalid optimizer input")

// normalizationFloor is the smallest absolute weight sum that is still
// divided through; below it the raw weights are returned untouched to
// avoid blowing up a degenerate sum near zero.
const normalizationFloor = 1e-10

// Optimizer computes mean-variance portfolio weights.
type Optimizer struct {
	kernel *matrix.Kernel
	log    zerolog.Logger
}

// NewOptimizer creates a mean-variance optimizer.
func NewOptimizer(kernel *matrix.Kernel, log zerolog.Logger) *Optimizer {
	return &Optimizer{
		kernel: kernel,
		log:    log.With().Str("component", "optimizer").Logger(),
	}
}

// MeanVariance computes Σ⁻¹·μ and normalizes the result to sum to 1.
// The weights come back in the same asset order as the inputs.
func (o *Optimizer) MeanVariance(sigma matrix.Matrix, expectedReturns []float64) ([]float64, error) {
	if sigma.IsEmpty() || len(expectedReturns) == 0 {
		return nil, fmt.Errorf("empty input: %w", ErrInvalidInput)
	}

	n := sigma.Rows()
	if sigma.Cols() != n || len(expectedReturns) != n {
		return nil, fmt.Errorf("covariance %dx%d vs %d expected returns: %w",
			sigma.Rows(), sigma.Cols(), len(expectedReturns), ErrInvalidInput)
	}

	sigmaInv, err := o.kernel.Invert(sigma)
	if err != nil {
		return nil, fmt.Errorf("invert covariance: %w", err)
	}

	weights, err := o.kernel.MultiplyVector(sigmaInv, expectedReturns)
	if err != nil {
		return nil, fmt.Errorf("raw weights: %w", err)
	}

	sum := 0.0
	for _, w := range weights {
		sum += w
	}

	if math.Abs(sum) > normalizationFloor {
		for i := range weights {
			weights[i] /= sum
		}
	} else {
		o.log.Warn().
			Float64("weight_sum", sum).
			Msg("Degenerate weight sum, returning unnormalized weights")
	}

	return weights, nil
}
