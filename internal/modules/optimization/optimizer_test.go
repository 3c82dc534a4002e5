package optimization

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jleechris06/optimizeme/internal/modules/blacklitterman"
	"github.com/jleechris06/optimizeme/internal/modules/views"
	"github.com/jleechris06/optimizeme/pkg/matrix"
)

func testOptimizer() *Optimizer {
	return NewOptimizer(matrix.DefaultKernel(zerolog.Nop()), zerolog.Nop())
}

func TestMeanVarianceNormalization(t *testing.T) {
	o := testOptimizer()

	sigma := matrix.Matrix{{0.04, 0.006}, {0.006, 0.09}}
	mu := []float64{0.08, 0.03}

	weights, err := o.MeanVariance(sigma, mu)
	require.NoError(t, err)
	require.Len(t, weights, 2)

	sum := weights[0] + weights[1]
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestMeanVarianceDegenerateSum(t *testing.T) {
	o := testOptimizer()

	// Symmetric returns on an identity covariance cancel exactly, so
	// normalization is skipped.
	sigma := matrix.Matrix{{1, 0}, {0, 1}}
	mu := []float64{0.05, -0.05}

	weights, err := o.MeanVariance(sigma, mu)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, weights[0], 1e-12)
	assert.InDelta(t, -0.05, weights[1], 1e-12)
}

func TestMeanVarianceValidation(t *testing.T) {
	o := testOptimizer()

	_, err := o.MeanVariance(matrix.Matrix{}, []float64{0.1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = o.MeanVariance(matrix.Matrix{{1, 0}, {0, 1}}, []float64{0.1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = o.MeanVariance(matrix.Matrix{{1, 0, 0}, {0, 1, 0}}, []float64{0.1, 0.2})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMeanVarianceSingularCovariance(t *testing.T) {
	o := testOptimizer()

	sigma := matrix.Matrix{{1, 2}, {2, 4}}
	_, err := o.MeanVariance(sigma, []float64{0.1, 0.2})
	require.Error(t, err)
	assert.ErrorIs(t, err, matrix.ErrNearSingular)
}

// End-to-end numeric pipeline: posterior returns feed the optimizer and
// the resulting weights sum to 1.
func TestPosteriorIntoMeanVariance(t *testing.T) {
	kernel := matrix.DefaultKernel(zerolog.Nop())
	engine := blacklitterman.NewEngine(kernel, zerolog.Nop())
	o := NewOptimizer(kernel, zerolog.Nop())

	sigma := matrix.Matrix{{0.04, 0.006}, {0.006, 0.09}}
	market := blacklitterman.MarketState{
		Sigma:   sigma,
		Weights: []float64{0.5, 0.5},
		Tau:     0.025,
	}
	vs := views.ViewSet{
		P:     matrix.Matrix{{1, -1}, {0, 1}},
		Q:     []float64{0.01, -0.005},
		Omega: matrix.Matrix{{0.0001, 0}, {0, 0.0001}},
	}

	posterior, err := engine.Posterior(market, vs)
	require.NoError(t, err)
	require.Len(t, posterior, 2)

	weights, err := o.MeanVariance(sigma, posterior)
	require.NoError(t, err)
	require.Len(t, weights, 2)

	assert.InDelta(t, 1.0, weights[0]+weights[1], 1e-9)
}
