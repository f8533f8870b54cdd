// Package errs defines the sentinel errors returned by lmkit.
//
// Every failure surfaced by the engine wraps exactly one of these sentinels, so callers
// can branch on the failure class with errors.Is regardless of the context added by
// the failing operation:
//
//	model, err := regression.Fit(ds, spec, rows)
//	switch {
//	case errors.Is(err, errs.ErrInvalidSpec):
//	    // bad column references, ask the user again
//	case errors.Is(err, errs.ErrRankDeficiency):
//	    // collinear predictors, drop one
//	}
package errs

import "errors"

var (
	// ErrInvalidSpec indicates a model specification that does not match the dataset:
	// an unknown column, the response listed as a predictor, or a column of the wrong type.
	ErrInvalidSpec = errors.New("invalid model specification")

	// ErrInsufficientData indicates too few rows for the requested computation,
	// e.g. residual degrees of freedom below one.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateResponse indicates a response without enough variation to model,
	// e.g. fewer than two distinct values or zero within-group variance.
	ErrDegenerateResponse = errors.New("degenerate response")

	// ErrDegenerateFactor indicates a grouping factor with fewer than two levels.
	// It also matches ErrInvalidSpec.
	ErrDegenerateFactor = &kindError{msg: "degenerate factor", parent: ErrInvalidSpec}

	// ErrRankDeficiency indicates a design matrix that is singular or too close to
	// singular to solve reliably.
	ErrRankDeficiency = errors.New("design matrix is rank deficient")

	// ErrMissingValue indicates a missing or non-finite value in a required column.
	ErrMissingValue = errors.New("missing or non-finite value")

	// ErrSchemaMismatch indicates prediction input that does not match the schema the
	// model was fitted on: a missing column, a changed type, or an unseen category.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrModelNotFit indicates an operation invoked before a model was fitted.
	ErrModelNotFit = errors.New("model not fitted")

	// ErrInsufficientColumns indicates fewer numeric columns than an operation needs.
	ErrInsufficientColumns = errors.New("insufficient numeric columns")

	// ErrNotApplicable indicates a diagnostic that does not apply to the model,
	// e.g. multicollinearity with a single predictor.
	ErrNotApplicable = errors.New("not applicable")

	// ErrInvalidInput indicates malformed tabular input during ingestion.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptSnapshot indicates a dataset snapshot that failed validation.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// kindError is a sentinel that also matches a broader parent sentinel.
type kindError struct {
	msg    string
	parent error
}

func (e *kindError) Error() string {
	return e.msg
}

// Is reports whether target is the parent class of this sentinel.
func (e *kindError) Is(target error) bool {
	return target == e.parent
}
