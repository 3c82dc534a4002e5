// Package signals converts fundamental ratios and per-article sentiment
// into the 3-bucket categorical distributions the view builder ranks on.
package signals

import (
	"errors"
)

// ErrNoSignals is returned when aggregation receives nothing to average.
var ErrNoSignals = errors.New("no signals to aggregate")

// Signal is a probability-like (bad, neutral, good) vector. Each
// component is non-negative; an all-zero signal means no data. After
// aggregation the components need not sum to 1.
type Signal struct {
	Bad     float64 `json:"bad"`
	Neutral float64 `json:"neutral"`
	Good    float64 `json:"good"`
}

// IsZero reports whether the signal carries no information.
func (s Signal) IsZero() bool {
	return s.Bad == 0 && s.Neutral == 0 && s.Good == 0
}

// ExpectedReturn reduces the signal to the scalar ranking key
// (good - bad) / (good + bad + neutral), 0 when the denominator is 0.
// The value is a relative-ranking key, not an absolute forecast.
func (s Signal) ExpectedReturn() float64 {
	total := s.Good + s.Bad + s.Neutral
	if total == 0 {
		return 0
	}
	return (s.Good - s.Bad) / total
}

// Fundamentals holds the two ratios reduced from a company's filings.
// A nil field means the filing data was insufficient to trust the ratio.
type Fundamentals struct {
	GrowthRate *float64 // year-over-year revenue growth, percent
	DebtEquity *float64 // long-term debt / stockholders equity
}

// EncodeGrowth buckets a YoY revenue growth rate. Negative growth is
// bad; low-but-positive [0, 0.1] and very high [0.5, ∞) growth share
// the cautiously-good bucket; everything else in between is neutral.
// A missing rate encodes to the zero signal.
func EncodeGrowth(rate *float64) Signal {
	if rate == nil {
		return Signal{}
	}

	r := *rate
	switch {
	case r < 0:
		return Signal{Bad: 0.2, Neutral: 0.8}
	case (r >= 0 && r <= 0.1) || r >= 0.5:
		return Signal{Neutral: 0.8, Good: 0.2}
	default:
		return Signal{Neutral: 1.0}
	}
}

// EncodeDebtEquity buckets a debt/equity ratio. [1.0, 1.5] is a healthy
// leverage band, below 1.0 is neutral, anything else present is risky.
// A missing ratio encodes to the zero signal.
func EncodeDebtEquity(ratio *float64) Signal {
	if ratio == nil {
		return Signal{}
	}

	r := *ratio
	switch {
	case r >= 1.0 && r <= 1.5:
		return Signal{Neutral: 0.8, Good: 0.2}
	case r < 1.0:
		return Signal{Neutral: 1.0}
	default:
		return Signal{Bad: 0.2, Neutral: 0.8}
	}
}

// EncodeFundamentals encodes both ratios of a fundamentals record.
func EncodeFundamentals(f Fundamentals) []Signal {
	return []Signal{
		EncodeGrowth(f.GrowthRate),
		EncodeDebtEquity(f.DebtEquity),
	}
}

// Aggregate blends several signals (per-article sentiment plus the
// fundamental-ratio encodings) into one by component-wise mean.
func Aggregate(sigs []Signal) (Signal, error) {
	if len(sigs) == 0 {
		return Signal{}, ErrNoSignals
	}

	var sum Signal
	for _, s := range sigs {
		sum.Bad += s.Bad
		sum.Neutral += s.Neutral
		sum.Good += s.Good
	}

	n := float64(len(sigs))
	return Signal{
		Bad:     sum.Bad / n,
		Neutral: sum.Neutral / n,
		Good:    sum.Good / n,
	}, nil
}
