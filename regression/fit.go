package regression

import (
	"fmt"
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/design"
	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/internal/options"
	"github.com/arloliu/lmkit/linalg"
)

// Fit estimates an ordinary least squares model on the given rows of ds.
//
// The design matrix holds an intercept column followed by the encoded predictors (see
// package design). Coefficients are solved through a QR factorization of the design matrix,
// and (XᵗX)⁻¹ comes from a Cholesky factorization of XᵗX.
//
// Parameters:
//   - ds: Dataset holding the response and predictor columns
//   - spec: Response and predictor names
//   - rows: Row indices to fit on, usually Split.Train; nil means every row
//   - opts: Optional settings (WithRankTolerance, WithLogger)
//
// Returns:
//   - *Model: The fitted model
//   - error: One of errs.ErrInvalidSpec, errs.ErrMissingValue, errs.ErrInsufficientData,
//     errs.ErrDegenerateResponse or errs.ErrRankDeficiency
//
// Example:
//
//	split, _ := ds.Split(0.7, 42)
//	model, err := regression.Fit(ds, regression.Spec{Response: "y", Predictors: []string{"x1", "x2"}}, split.Train)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(model.Summary())
func Fit(ds *dataset.Dataset, spec Spec, rows []int, opts ...FitOption) (*Model, error) {
	cfg, err := options.Build(defaultFitConfig(), opts...)
	if err != nil {
		return nil, err
	}

	if ds == nil {
		return nil, fmt.Errorf("%w: nil dataset", errs.ErrInvalidSpec)
	}
	if err := spec.Validate(ds); err != nil {
		return nil, err
	}

	if rows == nil {
		rows = dataset.AllRows(ds.Rows())
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to fit", errs.ErrInsufficientData)
	}
	for _, i := range rows {
		if i < 0 || i >= ds.Rows() {
			return nil, fmt.Errorf("%w: row %d out of range [0, %d)", errs.ErrInvalidSpec, i, ds.Rows())
		}
	}

	y, err := responseValues(ds, spec.Response, rows)
	if err != nil {
		return nil, err
	}

	enc, err := design.NewEncoder(ds, spec.Predictors, rows)
	if err != nil {
		return nil, err
	}

	n, p := len(rows), enc.Width()
	df := n - p
	if df < 1 {
		return nil, fmt.Errorf("%w: %d rows for %d coefficients leaves %d residual df",
			errs.ErrInsufficientData, n, p, df)
	}

	x, err := enc.Matrix(ds, rows)
	if err != nil {
		return nil, err
	}

	if rank := linalg.Rank(x, cfg.RankTolerance); rank < p {
		return nil, fmt.Errorf("%w: rank %d for %d design columns %v",
			errs.ErrRankDeficiency, rank, p, enc.ColumnNames())
	}

	xtxInv, err := linalg.CholeskyInverse(linalg.Gram(x))
	if err != nil {
		return nil, err
	}

	beta, err := linalg.SolveLeastSquares(x, y)
	if err != nil {
		return nil, err
	}

	fitted := linalg.MulVec(x, beta)
	residuals := make([]float64, n)
	sse := 0.0
	for i := range residuals {
		residuals[i] = y[i] - fitted[i]
		sse += residuals[i] * residuals[i]
	}

	m := &Model{
		spec:        Spec{Response: spec.Response, Predictors: slices.Clone(spec.Predictors)},
		encoder:     enc,
		x:           x,
		y:           y,
		beta:        beta,
		fitted:      fitted,
		residuals:   residuals,
		xtxInv:      xtxInv,
		rows:        slices.Clone(rows),
		df:          df,
		sigma:       math.Sqrt(sse / float64(df)),
		fingerprint: ds.Fingerprint(),
	}
	m.summary = m.summarize(sse)

	cfg.Logger.WithFields(logrus.Fields{
		"response":    spec.Response,
		"predictors":  spec.Predictors,
		"rows":        n,
		"df":          df,
		"r_squared":   m.summary.RSquared,
		"fingerprint": ds.Fingerprint(),
	}).Debug("fitted regression model")

	return m, nil
}

// responseValues extracts the response for rows and checks that it is complete and varies.
func responseValues(ds *dataset.Dataset, name string, rows []int) ([]float64, error) {
	col, _ := ds.Column(name)

	y := make([]float64, len(rows))
	for k, i := range rows {
		if col.IsMissing(i) {
			return nil, fmt.Errorf("%w: response %q row %d", errs.ErrMissingValue, name, i)
		}
		y[k] = col.Float64(i)
	}

	if !slices.ContainsFunc(y, func(v float64) bool { return v != y[0] }) {
		return nil, fmt.Errorf("%w: response %q is constant over the fitted rows", errs.ErrDegenerateResponse, name)
	}

	return y, nil
}
