// Package views encodes a ranked list of assets into the relative-view
// inputs (P, Q, Omega) of the Black-Litterman blend.
package views

import (
	"errors"
	"sort"

	"github.com/jleechris06/optimizeme/pkg/matrix"
)

// ErrNoAssets is returned when there is nothing to rank.
var ErrNoAssets = errors.New("no assets to build views from")

// RankedAsset pairs an asset with its scalar expected-return key.
type RankedAsset struct {
	Symbol         string
	ExpectedReturn float64
}

// ViewSet is the (P, Q, Omega) tuple consumed by the Black-Litterman
// engine. Order is the ascending ranking the rows refer to; downstream
// weights come back in this order.
type ViewSet struct {
	P     matrix.Matrix
	Q     []float64
	Omega matrix.Matrix
	Order []string
}

// Views returns the number of views (rows of P).
func (v ViewSet) Views() int {
	return v.P.Rows()
}

// Builder constructs view sets with a configurable uniform confidence.
type Builder struct {
	// Confidence is the diagonal entry of Omega. Larger values mean
	// less confidence in every view.
	Confidence float64
}

// NewBuilder creates a builder with the given view confidence.
func NewBuilder(confidence float64) *Builder {
	return &Builder{Confidence: confidence}
}

// Build sorts assets ascending by expected return (stable, ties keep
// input order) and encodes the ranking as a relative-view chain:
//
//   - P row i carries 1 at column i and -1 at every column j >= i+2,
//     so each asset (except the top two) is viewed against the assets
//     two or more ranks above it.
//   - Q[0] is the lowest scalar return; Q[i] for i >= 1 is the gap to
//     the asset one rank below.
//   - Omega is diagonal with the uniform confidence.
//
// This chain encoding is deliberate: it is what the downstream blend
// was calibrated against, not the textbook pairwise view form.
func (b *Builder) Build(assets []RankedAsset) (ViewSet, error) {
	if len(assets) == 0 {
		return ViewSet{}, ErrNoAssets
	}

	ranked := make([]RankedAsset, len(assets))
	copy(ranked, assets)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ExpectedReturn < ranked[j].ExpectedReturn
	})

	n := len(ranked)
	p := matrix.New(n, n)
	q := make([]float64, n)
	omega := matrix.New(n, n)
	order := make([]string, n)

	for i := 0; i < n; i++ {
		p[i][i] = 1.0
		for j := i + 2; j < n; j++ {
			p[i][j] = -1.0
		}

		if i == 0 {
			q[i] = ranked[i].ExpectedReturn
		} else {
			q[i] = ranked[i].ExpectedReturn - ranked[i-1].ExpectedReturn
		}

		omega[i][i] = b.Confidence
		order[i] = ranked[i].Symbol
	}

	return ViewSet{P: p, Q: q, Omega: omega, Order: order}, nil
}
