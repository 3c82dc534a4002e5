package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCovarianceMatrix(t *testing.T) {
	series := [][]float64{
		{1, 2, 3, 4},
		{2, 4, 6, 8},
	}

	cov := CovarianceMatrix(series)
	require.Len(t, cov, 2)

	// var(1,2,3,4) with n-1 denominator
	assert.InDelta(t, 5.0/3.0, cov[0][0], 1e-12)
	// cov(x, 2x) = 2 var(x)
	assert.InDelta(t, 10.0/3.0, cov[0][1], 1e-12)
	assert.Equal(t, cov[0][1], cov[1][0], "covariance matrix must be symmetric")
	assert.InDelta(t, 20.0/3.0, cov[1][1], 1e-12)
}

func TestCovarianceMatrixUnequalLengths(t *testing.T) {
	series := [][]float64{
		{1, 2, 3, 4, 5},
		{5, 4, 3},
	}

	cov := CovarianceMatrix(series)

	// Off-diagonal uses the shared 3-point prefix.
	assert.InDelta(t, -1.0, cov[0][1], 1e-12)
	assert.Equal(t, cov[0][1], cov[1][0])
}

func TestNormalizeWeights(t *testing.T) {
	got := NormalizeWeights([]float64{1, 3})
	assert.InDelta(t, 0.25, got[0], 1e-12)
	assert.InDelta(t, 0.75, got[1], 1e-12)

	// Non-positive total is left untouched.
	zeros := []float64{0, 0}
	assert.Equal(t, zeros, NormalizeWeights(zeros))
}

func TestCalculateReturns(t *testing.T) {
	got := CalculateReturns([]float64{100, 110, 99})
	require.Len(t, got, 2)
	assert.InDelta(t, 0.10, got[0], 1e-12)
	assert.InDelta(t, -0.10, got[1], 1e-12)

	assert.Empty(t, CalculateReturns([]float64{100}))
}

func TestCalculateRSIInsufficientData(t *testing.T) {
	assert.Nil(t, CalculateRSI([]float64{1, 2, 3}, 14))
}
