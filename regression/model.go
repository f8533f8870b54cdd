package regression

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/lmkit/design"
)

// Model is a fitted ordinary least squares model.
//
// A Model owns everything needed to inspect, diagnose and predict with the fit: the design
// matrix and response of the fitted rows, the coefficients, fitted values, residuals,
// (XᵗX)⁻¹, the residual standard error and the encoder that reproduces the design layout for
// new rows. A Model never changes after Fit returns and every accessor returns a copy, so a
// Model can be shared between goroutines.
type Model struct {
	spec        Spec
	encoder     *design.Encoder
	x           *mat.Dense
	y           []float64
	beta        []float64
	fitted      []float64
	residuals   []float64
	xtxInv      *mat.SymDense
	rows        []int
	df          int
	sigma       float64
	fingerprint uint64
	summary     Summary
}

// IsFitted reports whether m was produced by Fit. A nil or zero Model is not fitted.
func (m *Model) IsFitted() bool {
	return m != nil && m.encoder != nil
}

// Spec returns the model specification.
func (m *Model) Spec() Spec {
	return Spec{Response: m.spec.Response, Predictors: slices.Clone(m.spec.Predictors)}
}

// Encoder returns the design encoder built from the fitted rows.
func (m *Model) Encoder() *design.Encoder {
	return m.encoder
}

// Design returns a copy of the design matrix, one row per fitted row.
func (m *Model) Design() *mat.Dense {
	return mat.DenseCopyOf(m.x)
}

// Response returns the response values of the fitted rows.
func (m *Model) Response() []float64 {
	return slices.Clone(m.y)
}

// Coefficients returns β in design column order, intercept first.
func (m *Model) Coefficients() []float64 {
	return slices.Clone(m.beta)
}

// Fitted returns ŷ = Xβ.
func (m *Model) Fitted() []float64 {
	return slices.Clone(m.fitted)
}

// Residuals returns e = y − ŷ in fitted-row order.
func (m *Model) Residuals() []float64 {
	return slices.Clone(m.residuals)
}

// XtXInv returns a copy of (XᵗX)⁻¹.
func (m *Model) XtXInv() *mat.SymDense {
	out := mat.NewSymDense(m.xtxInv.SymmetricDim(), nil)
	out.CopySym(m.xtxInv)

	return out
}

// Rows returns the dataset row indices the model was fitted on, ascending when they came
// from a Split.
func (m *Model) Rows() []int {
	return slices.Clone(m.rows)
}

// NumObs returns the number of fitted rows.
func (m *Model) NumObs() int {
	return len(m.y)
}

// NumPredictors returns the number of predictor terms, not counting the intercept.
func (m *Model) NumPredictors() int {
	return len(m.spec.Predictors)
}

// DfResidual returns the residual degrees of freedom n − p.
func (m *Model) DfResidual() int {
	return m.df
}

// Sigma returns the residual standard error σ̂.
func (m *Model) Sigma() float64 {
	return m.sigma
}

// Fingerprint returns the fingerprint of the dataset the model was fitted on.
func (m *Model) Fingerprint() uint64 {
	return m.fingerprint
}

// Summary returns the regression summary.
func (m *Model) Summary() Summary {
	return m.summary.clone()
}

// String returns a one-line description of the model.
func (m *Model) String() string {
	return fmt.Sprintf("Model{Response: %s, Predictors: %v, n: %d, R²: %.4f, σ̂: %.4f}",
		m.spec.Response, m.spec.Predictors, len(m.y), m.summary.RSquared, m.sigma)
}
