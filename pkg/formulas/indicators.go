package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateRSI calculates the current Relative Strength Index from a
// series of closing prices. Returns nil when there is not enough data
// for the requested period.
func CalculateRSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)
	if len(rsi) == 0 {
		return nil
	}

	last := rsi[len(rsi)-1]
	if isNaN(last) {
		return nil
	}
	return &last
}

// isNaN checks if a float64 is NaN.
func isNaN(f float64) bool {
	return f != f
}
