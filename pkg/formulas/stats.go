// Package formulas contains the statistical helpers used when reducing
// price history to optimizer inputs.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values.
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Covariance calculates the sample covariance between two equal-length
// series. Returns 0 on empty or mismatched input.
func Covariance(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// CalculateReturns converts prices to percentage returns:
// Returns[i] = (Price[i+1] - Price[i]) / Price[i].
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

// AnnualizedVolatility calculates annualized volatility from daily
// returns (std dev × sqrt of 252 trading days).
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	return StdDev(dailyReturns) * math.Sqrt(252)
}

// CovarianceMatrix builds the sample covariance matrix across several
// price series (one series per asset). Series may differ in length;
// each pairwise covariance uses the shared prefix with an n-1
// denominator. The result is symmetric by construction.
func CovarianceMatrix(series [][]float64) [][]float64 {
	n := len(series)
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}

	means := make([]float64, n)
	for i, s := range series {
		means[i] = Mean(s)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			count := len(series[i])
			if len(series[j]) < count {
				count = len(series[j])
			}
			if count < 2 {
				continue
			}

			sum := 0.0
			for k := 0; k < count; k++ {
				sum += (series[i][k] - means[i]) * (series[j][k] - means[j])
			}

			v := sum / (float64(count) - 1.0)
			cov[i][j] = v
			cov[j][i] = v
		}
	}

	return cov
}

// NormalizeWeights scales a slice so it sums to 1. Left untouched when
// the total is not positive (e.g. all quotes failed).
func NormalizeWeights(weights []float64) []float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return weights
	}

	out := make([]float64, len(weights))
	inv := 1.0 / total
	for i, w := range weights {
		out[i] = w * inv
	}
	return out
}
