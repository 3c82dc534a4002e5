package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestEncodeGrowth(t *testing.T) {
	tests := []struct {
		name string
		rate *float64
		want Signal
	}{
		{name: "negative growth is bad", rate: ptr(-0.01), want: Signal{Bad: 0.2, Neutral: 0.8}},
		{name: "low positive growth", rate: ptr(0.05), want: Signal{Neutral: 0.8, Good: 0.2}},
		{name: "zero growth is in the low band", rate: ptr(0.0), want: Signal{Neutral: 0.8, Good: 0.2}},
		{name: "band upper edge", rate: ptr(0.1), want: Signal{Neutral: 0.8, Good: 0.2}},
		{name: "very high growth shares the band", rate: ptr(0.75), want: Signal{Neutral: 0.8, Good: 0.2}},
		{name: "mid growth is neutral", rate: ptr(0.3), want: Signal{Neutral: 1.0}},
		{name: "missing rate", rate: nil, want: Signal{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeGrowth(tt.rate))
		})
	}
}

func TestEncodeDebtEquity(t *testing.T) {
	tests := []struct {
		name  string
		ratio *float64
		want  Signal
	}{
		{name: "healthy leverage band", ratio: ptr(1.2), want: Signal{Neutral: 0.8, Good: 0.2}},
		{name: "band lower edge", ratio: ptr(1.0), want: Signal{Neutral: 0.8, Good: 0.2}},
		{name: "band upper edge", ratio: ptr(1.5), want: Signal{Neutral: 0.8, Good: 0.2}},
		{name: "low leverage is neutral", ratio: ptr(0.4), want: Signal{Neutral: 1.0}},
		{name: "high leverage is risky", ratio: ptr(2.3), want: Signal{Bad: 0.2, Neutral: 0.8}},
		{name: "missing ratio", ratio: nil, want: Signal{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeDebtEquity(tt.ratio))
		})
	}
}

func TestAggregate(t *testing.T) {
	sigs := []Signal{
		{Bad: 0.2, Neutral: 0.8, Good: 0.0},
		{Bad: 0.0, Neutral: 0.8, Good: 0.2},
		{Bad: 0.1, Neutral: 0.2, Good: 0.7},
	}

	got, err := Aggregate(sigs)
	require.NoError(t, err)

	assert.InDelta(t, 0.1, got.Bad, 1e-12)
	assert.InDelta(t, 0.6, got.Neutral, 1e-12)
	assert.InDelta(t, 0.3, got.Good, 1e-12)
}

func TestAggregateEmpty(t *testing.T) {
	_, err := Aggregate(nil)
	assert.ErrorIs(t, err, ErrNoSignals)
}

func TestExpectedReturn(t *testing.T) {
	s := Signal{Bad: 0.1, Neutral: 0.6, Good: 0.3}
	assert.InDelta(t, 0.2/1.0, s.ExpectedReturn(), 1e-12)

	// Zero denominator guards against division by zero.
	assert.Equal(t, 0.0, Signal{}.ExpectedReturn())
}
