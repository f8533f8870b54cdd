// Package linalg wraps the gonum factorizations used by the model fitter and the diagnostics.
//
// All functions are pure: inputs are never modified and results are freshly allocated.
// Numerical failures are reported as errs.ErrRankDeficiency.
package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/lmkit/errs"
)

// DefaultRankTolerance is the relative singular-value cutoff used by Rank.
const DefaultRankTolerance = 1e-7

// Gram returns XᵗX.
func Gram(x mat.Matrix) *mat.SymDense {
	var g mat.SymDense
	g.SymOuterK(1, x.T())

	return &g
}

// CholeskyInverse returns the inverse of the symmetric positive definite matrix g.
func CholeskyInverse(g mat.Symmetric) (*mat.SymDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(g); !ok {
		return nil, fmt.Errorf("%w: Gram matrix is not positive definite", errs.ErrRankDeficiency)
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrRankDeficiency, err)
	}

	return &inv, nil
}

// SolveLeastSquares returns the β minimizing ‖Xβ − y‖₂ via a QR factorization of X.
// X must have at least as many rows as columns.
func SolveLeastSquares(x mat.Matrix, y []float64) ([]float64, error) {
	r, c := x.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("%w: response length %d does not match %d design rows", errs.ErrInvalidInput, len(y), r)
	}
	if r < c {
		return nil, fmt.Errorf("%w: %d rows for %d columns", errs.ErrRankDeficiency, r, c)
	}

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(r, append([]float64(nil), y...))); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrRankDeficiency, err)
	}

	return vecData(&beta), nil
}

// Rank returns the numerical rank of x.
//
// Columns are first scaled to unit Euclidean norm so that predictors measured on very
// different scales do not mask a dependency. A singular value counts toward the rank when it
// exceeds relTol times the largest singular value. An all-zero column never counts.
func Rank(x mat.Matrix, relTol float64) int {
	if relTol <= 0 {
		relTol = DefaultRankTolerance
	}

	eq := equilibrate(x)

	var svd mat.SVD
	if ok := svd.Factorize(eq, mat.SVDNone); !ok {
		return 0
	}

	values := svd.Values(nil)
	if len(values) == 0 || values[0] == 0 {
		return 0
	}

	cutoff := relTol * values[0]
	rank := 0
	for _, s := range values {
		if s > cutoff {
			rank++
		}
	}

	return rank
}

// PseudoInverse returns the Moore-Penrose inverse of a computed from its thin SVD.
func PseudoInverse(a mat.Matrix) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: SVD did not converge", errs.ErrRankDeficiency)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	r, c := a.Dims()
	cutoff := 0.0
	if len(values) > 0 {
		cutoff = float64(max(r, c)) * values[0] * epsilon
	}

	// V·Σ⁺ scaled column by column, then multiplied by Uᵗ.
	vs := mat.DenseCopyOf(&v)
	vr, _ := vs.Dims()
	for j, s := range values {
		inv := 0.0
		if s > cutoff {
			inv = 1 / s
		}
		for i := 0; i < vr; i++ {
			vs.Set(i, j, vs.At(i, j)*inv)
		}
	}

	var pinv mat.Dense
	pinv.Mul(vs, u.T())

	return &pinv, nil
}

// EigenvaluesSym returns the eigenvalues of a in ascending order.
func EigenvaluesSym(a mat.Symmetric) ([]float64, error) {
	var es mat.EigenSym
	if ok := es.Factorize(a, false); !ok {
		return nil, fmt.Errorf("%w: symmetric eigendecomposition did not converge", errs.ErrRankDeficiency)
	}

	return es.Values(nil), nil
}

// MulVec returns a·v.
func MulVec(a mat.Matrix, v []float64) []float64 {
	var out mat.VecDense
	out.MulVec(a, mat.NewVecDense(len(v), append([]float64(nil), v...)))

	return vecData(&out)
}

// QuadForm returns vᵗ·a·v.
func QuadForm(a mat.Symmetric, v []float64) float64 {
	x := mat.NewVecDense(len(v), append([]float64(nil), v...))

	return mat.Inner(x, a, x)
}

// ResidualMaker returns M = I − X(XᵗX)⁻¹Xᵗ, the projection onto the residual space of X.
func ResidualMaker(x mat.Matrix, xtxInv mat.Symmetric) *mat.SymDense {
	n, _ := x.Dims()

	var xa mat.Dense
	xa.Mul(x, xtxInv)

	var hat mat.Dense
	hat.Mul(&xa, x.T())

	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := -0.5 * (hat.At(i, j) + hat.At(j, i))
			if i == j {
				v++
			}
			m.SetSym(i, j, v)
		}
	}

	return m
}

const epsilon = 0x1p-52

func equilibrate(x mat.Matrix) *mat.Dense {
	eq := mat.DenseCopyOf(x)
	r, c := eq.Dims()
	for j := 0; j < c; j++ {
		norm := 0.0
		for i := 0; i < r; i++ {
			v := eq.At(i, j)
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			continue
		}
		for i := 0; i < r; i++ {
			eq.Set(i, j, eq.At(i, j)/norm)
		}
	}

	return eq
}

func vecData(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}

	return out
}
