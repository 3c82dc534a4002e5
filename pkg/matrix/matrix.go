// Package matrix provides the dense matrix primitives used by the
// Black-Litterman engine and the mean-variance optimizer: multiply,
// transpose, identity and Gauss-Jordan inversion with partial pivoting.
package matrix

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Failure taxonomy for matrix operations. Callers are expected to
// recover from all of these and surface an empty result.
var (
	ErrEmpty             = errors.New("empty matrix")
	ErrRaggedRows        = errors.New("inconsistent row lengths")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNotSquare         = errors.New("matrix is not square")
	ErrNearSingular      = errors.New("matrix is nearly singular")
)

// Matrix is a rectangular array of float64 values. The zero value is
// an empty matrix.
type Matrix [][]float64

// New creates a rows×cols matrix filled with zeros.
func New(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// Identity returns the n×n identity matrix.
func Identity(n int) Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m[i][i] = 1.0
	}
	return m
}

// ColumnVector converts a slice into an n×1 matrix.
func ColumnVector(v []float64) Matrix {
	m := make(Matrix, len(v))
	for i, x := range v {
		m[i] = []float64{x}
	}
	return m
}

// Rows returns the number of rows.
func (m Matrix) Rows() int {
	return len(m)
}

// Cols returns the number of columns (0 for an empty matrix).
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// IsEmpty reports whether the matrix has no rows or no columns.
func (m Matrix) IsEmpty() bool {
	return m.Rows() == 0 || m.Cols() == 0
}

// Column extracts column j as a slice.
func (m Matrix) Column(j int) []float64 {
	col := make([]float64, m.Rows())
	for i := range m {
		col[i] = m[i][j]
	}
	return col
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// Scale returns the matrix with every entry multiplied by s.
func (m Matrix) Scale(s float64) Matrix {
	out := New(m.Rows(), m.Cols())
	for i, row := range m {
		for j, v := range row {
			out[i][j] = v * s
		}
	}
	return out
}

// Add returns the entrywise sum of m and other.
func (m Matrix) Add(other Matrix) (Matrix, error) {
	if m.Rows() != other.Rows() || m.Cols() != other.Cols() {
		return nil, fmt.Errorf("add %dx%d and %dx%d: %w",
			m.Rows(), m.Cols(), other.Rows(), other.Cols(), ErrDimensionMismatch)
	}
	out := New(m.Rows(), m.Cols())
	for i, row := range m {
		for j, v := range row {
			out[i][j] = v + other[i][j]
		}
	}
	return out, nil
}

// Kernel performs matrix operations with configurable numeric policy.
// The tolerances decide whether borderline-conditioned inputs are
// accepted or rejected, so they are settings rather than constants.
type Kernel struct {
	// SingularTol is the minimum acceptable pivot magnitude during
	// Gauss-Jordan elimination. A smaller pivot classifies the matrix
	// as near-singular.
	SingularTol float64

	// VerifyTol is the per-entry tolerance for the post-inversion
	// A·A⁻¹ ≈ I check. The check is diagnostic only.
	VerifyTol float64

	log zerolog.Logger
}

// NewKernel creates a kernel with the given tolerances.
func NewKernel(singularTol, verifyTol float64, log zerolog.Logger) *Kernel {
	return &Kernel{
		SingularTol: singularTol,
		VerifyTol:   verifyTol,
		log:         log.With().Str("component", "matrix").Logger(),
	}
}

// DefaultKernel returns a kernel with the standard tolerances
// (1e-10 singularity, 1e-8 identity verification).
func DefaultKernel(log zerolog.Logger) *Kernel {
	return NewKernel(1e-10, 1e-8, log)
}

// Multiply computes the product A·B. It fails when either matrix is
// empty or A.Cols != B.Rows.
func (k *Kernel) Multiply(a, b Matrix) (Matrix, error) {
	if a.IsEmpty() || b.IsEmpty() {
		return nil, fmt.Errorf("multiply: %w", ErrEmpty)
	}
	if a.Cols() != b.Rows() {
		return nil, fmt.Errorf("multiply %dx%d by %dx%d: %w",
			a.Rows(), a.Cols(), b.Rows(), b.Cols(), ErrDimensionMismatch)
	}

	rows := a.Rows()
	inner := a.Cols()
	cols := b.Cols()
	out := New(rows, cols)

	// i,k,j ordering keeps b's row in cache while accumulating.
	for i := 0; i < rows; i++ {
		for m := 0; m < inner; m++ {
			aim := a[i][m]
			for j := 0; j < cols; j++ {
				out[i][j] += aim * b[m][j]
			}
		}
	}

	return out, nil
}

// MultiplyVector computes A·v and returns the result as a slice.
func (k *Kernel) MultiplyVector(a Matrix, v []float64) ([]float64, error) {
	if a.IsEmpty() || len(v) == 0 {
		return nil, fmt.Errorf("multiply vector: %w", ErrEmpty)
	}
	if a.Cols() != len(v) {
		return nil, fmt.Errorf("multiply %dx%d by vector of length %d: %w",
			a.Rows(), a.Cols(), len(v), ErrDimensionMismatch)
	}

	out := make([]float64, a.Rows())
	for i, row := range a {
		for j, x := range row {
			out[i] += x * v[j]
		}
	}
	return out, nil
}

// Transpose returns Aᵗ. It fails when A is empty or has ragged rows.
func (k *Kernel) Transpose(a Matrix) (Matrix, error) {
	if a.IsEmpty() {
		return nil, fmt.Errorf("transpose: %w", ErrEmpty)
	}
	cols := a.Cols()
	for _, row := range a {
		if len(row) != cols {
			return nil, fmt.Errorf("transpose: %w", ErrRaggedRows)
		}
	}

	out := New(cols, a.Rows())
	for i, row := range a {
		for j, v := range row {
			out[j][i] = v
		}
	}
	return out, nil
}

// Invert computes A⁻¹ using Gauss-Jordan elimination with partial
// pivoting. A pivot magnitude below SingularTol classifies the matrix
// as near-singular and fails the operation. After a successful
// elimination the result is verified against A·A⁻¹ ≈ I; a verification
// miss logs a warning but never blocks the result.
func (k *Kernel) Invert(a Matrix) (Matrix, error) {
	if a.IsEmpty() {
		return nil, fmt.Errorf("invert: %w", ErrEmpty)
	}
	n := a.Rows()
	for _, row := range a {
		if len(row) != n {
			return nil, fmt.Errorf("invert %dx%d: %w", a.Rows(), a.Cols(), ErrNotSquare)
		}
	}

	work := a.Clone()
	inv := Identity(n)

	for i := 0; i < n; i++ {
		// Select the row with the largest absolute pivot.
		maxVal := 0.0
		maxRow := i
		for r := i; r < n; r++ {
			if abs := math.Abs(work[r][i]); abs > maxVal {
				maxVal = abs
				maxRow = r
			}
		}

		if maxVal < k.SingularTol {
			return nil, fmt.Errorf("invert: pivot %g below %g at column %d: %w",
				maxVal, k.SingularTol, i, ErrNearSingular)
		}

		if maxRow != i {
			work[i], work[maxRow] = work[maxRow], work[i]
			inv[i], inv[maxRow] = inv[maxRow], inv[i]
		}

		// Normalize the pivot row.
		diag := work[i][i]
		for j := 0; j < n; j++ {
			work[i][j] /= diag
			inv[i][j] /= diag
		}

		// Eliminate the pivot column from every other row.
		for r := 0; r < n; r++ {
			if r == i {
				continue
			}
			factor := work[r][i]
			for j := 0; j < n; j++ {
				work[r][j] -= factor * work[i][j]
				inv[r][j] -= factor * inv[i][j]
			}
		}
	}

	k.verifyInverse(a, inv)

	return inv, nil
}

// verifyInverse checks A·A⁻¹ against the identity and logs when an
// entry deviates beyond VerifyTol. Diagnostic only.
func (k *Kernel) verifyInverse(a, inv Matrix) {
	product, err := k.Multiply(a, inv)
	if err != nil {
		return
	}
	for i, row := range product {
		for j, v := range row {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(v-want) > k.VerifyTol {
				k.log.Warn().
					Int("row", i).
					Int("col", j).
					Float64("value", v).
					Msg("Matrix inversion may be numerically unstable")
				return
			}
		}
	}
}
