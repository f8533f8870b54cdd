package dist

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/linalg"
)

const (
	// DurbinWatsonExactLimit is the largest sample size for which DurbinWatsonPValue
	// evaluates the exact null distribution. Larger samples use the normal approximation.
	DurbinWatsonExactLimit = 400

	eigenTolerance = 1e-10
)

// DurbinWatsonPValue returns the two-sided p-value of the Durbin-Watson statistic d for
// residuals of an OLS fit on the design matrix x (intercept included).
//
// Under the null of independent normal errors, d = eᵗAe / eᵗe where A is the first-difference
// matrix, so P(D < d) = P(Σ (λᵢ − d)·Zᵢ² < 0) with λᵢ the non-zero eigenvalues of MAM and
// M the residual maker of x. That probability is computed with Imhof's method. For more than
// DurbinWatsonExactLimit rows the normal approximation with the exact mean and variance of D
// is used instead.
func DurbinWatsonPValue(d float64, x mat.Matrix) (float64, error) {
	n, k := x.Dims()
	if n-k < 1 {
		return math.NaN(), fmt.Errorf("%w: %d rows for %d design columns", errs.ErrInsufficientData, n, k)
	}
	if math.IsNaN(d) {
		return math.NaN(), fmt.Errorf("%w: statistic is NaN", errs.ErrInvalidInput)
	}

	xtxInv, err := linalg.CholeskyInverse(linalg.Gram(x))
	if err != nil {
		return math.NaN(), err
	}

	if n > DurbinWatsonExactLimit {
		return durbinWatsonNormal(d, x, xtxInv), nil
	}

	lower, err := durbinWatsonExact(d, x, xtxInv)
	if err != nil {
		return math.NaN(), err
	}

	return math.Min(1, 2*math.Min(lower, 1-lower)), nil
}

// durbinWatsonExact returns P(D < d).
func durbinWatsonExact(d float64, x mat.Matrix, xtxInv mat.Symmetric) (float64, error) {
	n, k := x.Dims()
	m := linalg.ResidualMaker(x, xtxInv)
	a := differenceMatrix(n)

	var am, mam mat.Dense
	am.Mul(a, m)
	mam.Mul(m, &am)

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(mam.At(i, j)+mam.At(j, i)))
		}
	}

	values, err := linalg.EigenvaluesSym(sym)
	if err != nil {
		return math.NaN(), err
	}

	// The n−k largest eigenvalues belong to the residual space; the rest are zero.
	weights := make([]float64, 0, n-k)
	for _, v := range values[k:] {
		if v > eigenTolerance {
			weights = append(weights, v-d)
		}
	}
	if len(weights) == 0 {
		return math.NaN(), fmt.Errorf("%w: residual space has no spread", errs.ErrInsufficientData)
	}

	return Imhof(weights), nil
}

// durbinWatsonNormal returns the two-sided p-value from a normal distribution with the
// exact mean and variance of D.
func durbinWatsonNormal(d float64, x mat.Matrix, xtxInv mat.Symmetric) float64 {
	n, k := x.Dims()
	a := differenceMatrix(n)

	var ax mat.Dense
	ax.Mul(a, x)

	// XᵗAX·(XᵗX)⁻¹
	var xax, xaxq mat.Dense
	xax.Mul(x.T(), &ax)
	xaxq.Mul(&xax, xtxInv)

	var axax, axaxq, sq mat.Dense
	axax.Mul(ax.T(), &ax)
	axaxq.Mul(&axax, xtxInv)
	sq.Mul(&xaxq, &xaxq)

	nf, kf := float64(n), float64(k)
	p := 2*(nf-1) - mat.Trace(&xaxq)
	q := 2*(3*nf-4) - 2*mat.Trace(&axaxq) + mat.Trace(&sq)
	mean := p / (nf - kf)
	variance := 2 / ((nf - kf) * (nf - kf + 2)) * (q - p*mean)
	if variance <= 0 {
		return math.NaN()
	}

	norm := distuv.Normal{Mu: 0, Sigma: math.Sqrt(variance)}

	return math.Min(1, 2*norm.Survival(math.Abs(d-mean)))
}

// differenceMatrix returns A with eᵗAe = Σ(eₜ − eₜ₋₁)².
func differenceMatrix(n int) *mat.SymDense {
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		diag := 2.0
		if i == 0 || i == n-1 {
			diag = 1
		}
		a.SetSym(i, i, diag)
		if i+1 < n {
			a.SetSym(i, i+1, -1)
		}
	}

	return a
}
