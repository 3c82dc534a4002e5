package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jleechris06/optimizeme/pkg/matrix"
)

func TestBuildRankingMonotonicity(t *testing.T) {
	b := NewBuilder(0.01)

	assets := []RankedAsset{
		{Symbol: "MSFT", ExpectedReturn: 0.12},
		{Symbol: "TSLA", ExpectedReturn: -0.05},
		{Symbol: "GOOGL", ExpectedReturn: 0.03},
	}

	vs, err := b.Build(assets)
	require.NoError(t, err)

	// Ascending by expected return.
	assert.Equal(t, []string{"TSLA", "GOOGL", "MSFT"}, vs.Order)

	// Q[0] is the lowest return, then consecutive differences.
	require.Len(t, vs.Q, 3)
	assert.InDelta(t, -0.05, vs.Q[0], 1e-12)
	assert.InDelta(t, 0.08, vs.Q[1], 1e-12)
	assert.InDelta(t, 0.09, vs.Q[2], 1e-12)
}

func TestBuildPShape(t *testing.T) {
	b := NewBuilder(0.01)

	assets := []RankedAsset{
		{Symbol: "A", ExpectedReturn: 0.1},
		{Symbol: "B", ExpectedReturn: 0.2},
		{Symbol: "C", ExpectedReturn: 0.3},
		{Symbol: "D", ExpectedReturn: 0.4},
	}

	vs, err := b.Build(assets)
	require.NoError(t, err)

	want := matrix.Matrix{
		{1, 0, -1, -1},
		{0, 1, 0, -1},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	assert.Equal(t, want, vs.P)

	// Omega is diagonal with the uniform confidence.
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				assert.Equal(t, 0.01, vs.Omega[i][j])
			} else {
				assert.Zero(t, vs.Omega[i][j])
			}
		}
	}

	assert.Equal(t, 4, vs.Views())
}

func TestBuildStableTies(t *testing.T) {
	b := NewBuilder(0.01)

	assets := []RankedAsset{
		{Symbol: "FIRST", ExpectedReturn: 0.1},
		{Symbol: "SECOND", ExpectedReturn: 0.1},
	}

	vs, err := b.Build(assets)
	require.NoError(t, err)

	// Equal keys keep their input order.
	assert.Equal(t, []string{"FIRST", "SECOND"}, vs.Order)
	assert.InDelta(t, 0.1, vs.Q[0], 1e-12)
	assert.InDelta(t, 0.0, vs.Q[1], 1e-12)
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	b := NewBuilder(0.01)

	assets := []RankedAsset{
		{Symbol: "B", ExpectedReturn: 0.2},
		{Symbol: "A", ExpectedReturn: 0.1},
	}

	_, err := b.Build(assets)
	require.NoError(t, err)
	assert.Equal(t, "B", assets[0].Symbol)
}

func TestBuildEmpty(t *testing.T) {
	b := NewBuilder(0.01)
	_, err := b.Build(nil)
	assert.ErrorIs(t, err, ErrNoAssets)
}
