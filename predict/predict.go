// Package predict computes point predictions, prediction intervals and mean-response confidence
// intervals from a fitted regression model.
//
// New rows are encoded with the model's design encoder, so a predictor column that is absent,
// has changed type, or holds a category never seen in training fails with
// errs.ErrSchemaMismatch instead of silently encoding to the reference level.
//
// For a new row x₀ the interval half-widths are
//
//	prediction:    t(1−α/2, df) · σ̂ · √(1 + x₀ᵗ(XᵗX)⁻¹x₀)
//	mean response: t(1−α/2, df) · σ̂ · √(x₀ᵗ(XᵗX)⁻¹x₀)
package predict

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/format"
	"github.com/arloliu/lmkit/internal/options"
	"github.com/arloliu/lmkit/linalg"
	"github.com/arloliu/lmkit/regression"
)

// Prediction is the prediction for one row.
type Prediction struct {
	// Row is the row index in the dataset the prediction was made from.
	Row      int     `json:"row" yaml:"row"`
	Estimate float64 `json:"estimate" yaml:"estimate"`
	// Lower and Upper bound the prediction interval of a new observation.
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
	// MeanLower and MeanUpper bound the confidence interval of the mean response.
	MeanLower float64 `json:"mean_lower" yaml:"mean_lower"`
	MeanUpper float64 `json:"mean_upper" yaml:"mean_upper"`
	// SE is the standard error of the mean response.
	SE float64 `json:"se" yaml:"se"`
	// Actual and Residual are NaN when the row carries no observed response.
	Actual   float64 `json:"actual" yaml:"actual"`
	Residual float64 `json:"residual" yaml:"residual"`
}

// HasActual reports whether the row carried an observed response.
func (p Prediction) HasActual() bool {
	return !math.IsNaN(p.Actual)
}

// Accuracy summarizes prediction errors over rows with an observed response.
type Accuracy struct {
	N    int     `json:"n" yaml:"n"`
	MSE  float64 `json:"mse" yaml:"mse"`
	RMSE float64 `json:"rmse" yaml:"rmse"`
	MAE  float64 `json:"mae" yaml:"mae"`
}

// Result holds the predictions of one request.
type Result struct {
	Response   string  `json:"response" yaml:"response"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	DF         int     `json:"df" yaml:"df"`
	// Critical is the Student-t quantile t(1−α/2, df).
	Critical    float64      `json:"critical" yaml:"critical"`
	Predictions []Prediction `json:"predictions" yaml:"predictions"`
	// Accuracy is nil when no row carries an observed response.
	Accuracy *Accuracy `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
}

// Estimates returns the point estimates in row order.
func (r *Result) Estimates() []float64 {
	out := make([]float64, len(r.Predictions))
	for i, p := range r.Predictions {
		out[i] = p.Estimate
	}

	return out
}

// Predict predicts every row of ds.
//
// Parameters:
//   - m: Fitted model
//   - ds: New rows; they need the model's predictor columns and may carry the response
//   - confidence: Interval confidence level in (0, 1)
//   - opts: Optional settings (WithLogger)
//
// Returns:
//   - *Result: One prediction per row, with an accuracy summary when the response is present
//   - error: errs.ErrModelNotFit, errs.ErrInvalidSpec, errs.ErrSchemaMismatch or errs.ErrMissingValue
func Predict(m *regression.Model, ds *dataset.Dataset, confidence float64, opts ...Option) (*Result, error) {
	if !m.IsFitted() {
		return nil, errs.ErrModelNotFit
	}
	if ds == nil {
		return nil, fmt.Errorf("%w: nil dataset", errs.ErrInvalidSpec)
	}

	return predictRows(m, ds, dataset.AllRows(ds.Rows()), confidence, false, opts)
}

// Evaluate predicts the given rows of ds, typically the held-out rows of a split, and scores
// the predictions against the observed response.
//
// It fails with errs.ErrSchemaMismatch when ds has no numeric response column and with
// errs.ErrInsufficientData when rows is empty.
func Evaluate(m *regression.Model, ds *dataset.Dataset, rows []int, confidence float64, opts ...Option) (*Result, error) {
	if !m.IsFitted() {
		return nil, errs.ErrModelNotFit
	}
	if ds == nil {
		return nil, fmt.Errorf("%w: nil dataset", errs.ErrInvalidSpec)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to evaluate", errs.ErrInsufficientData)
	}

	return predictRows(m, ds, rows, confidence, true, opts)
}

func predictRows(m *regression.Model, ds *dataset.Dataset, rows []int, confidence float64,
	needActual bool, opts []Option,
) (*Result, error) {
	cfg, err := options.Build(defaultConfig(), opts...)
	if err != nil {
		return nil, err
	}

	if !(confidence > 0 && confidence < 1) {
		return nil, fmt.Errorf("%w: confidence %v outside (0, 1)", errs.ErrInvalidSpec, confidence)
	}
	for _, i := range rows {
		if i < 0 || i >= ds.Rows() {
			return nil, fmt.Errorf("%w: row %d out of range [0, %d)", errs.ErrInvalidSpec, i, ds.Rows())
		}
	}

	spec := m.Spec()
	resp, hasResp := ds.Column(spec.Response)
	hasResp = hasResp && resp.Type() == format.TypeNumeric
	if needActual && !hasResp {
		return nil, fmt.Errorf("%w: numeric response %q not found", errs.ErrSchemaMismatch, spec.Response)
	}

	x, err := m.Encoder().Matrix(ds, rows)
	if err != nil {
		return nil, err
	}

	df := m.DfResidual()
	sigma := m.Sigma()
	beta := mat.NewVecDense(len(m.Coefficients()), m.Coefficients())
	xtxInv := m.XtXInv()
	tcrit := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.Quantile(1 - (1-confidence)/2)

	res := &Result{
		Response:    spec.Response,
		Confidence:  confidence,
		DF:          df,
		Critical:    tcrit,
		Predictions: make([]Prediction, len(rows)),
	}

	acc := Accuracy{}
	for r, i := range rows {
		x0 := mat.Row(nil, r, x)
		est := mat.Dot(mat.NewVecDense(len(x0), x0), beta)
		h := linalg.QuadForm(xtxInv, x0)

		se := sigma * math.Sqrt(h)
		pi := tcrit * sigma * math.Sqrt(1+h)
		ci := tcrit * se

		p := Prediction{
			Row:       i,
			Estimate:  est,
			Lower:     est - pi,
			Upper:     est + pi,
			MeanLower: est - ci,
			MeanUpper: est + ci,
			SE:        se,
			Actual:    math.NaN(),
			Residual:  math.NaN(),
		}

		if hasResp && !resp.IsMissing(i) {
			p.Actual = resp.Float64(i)
			p.Residual = p.Actual - est

			acc.N++
			acc.MSE += p.Residual * p.Residual
			acc.MAE += math.Abs(p.Residual)
		}

		res.Predictions[r] = p
	}

	if acc.N > 0 {
		acc.MSE /= float64(acc.N)
		acc.MAE /= float64(acc.N)
		acc.RMSE = math.Sqrt(acc.MSE)
		res.Accuracy = &acc
	}

	fields := logrus.Fields{
		"response":   spec.Response,
		"rows":       len(rows),
		"confidence": confidence,
		"df":         df,
	}
	if res.Accuracy != nil {
		fields["rmse"] = res.Accuracy.RMSE
	}
	cfg.Logger.WithFields(fields).Debug("predicted rows")

	return res, nil
}
