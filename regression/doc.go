// Package regression fits ordinary least squares models with an intercept.
//
// Fit builds the design matrix from a dataset (numeric predictors pass through, categorical
// predictors become indicator columns against their first level), refuses to compute on a
// rank-deficient design, and returns an immutable Model carrying coefficients, residuals,
// (XᵗX)⁻¹ and the encoder needed to predict on new rows.
//
// # Key Features
//
//   - **Stable solve**: coefficients come from a QR factorization of X, never from an
//     explicit inverse of XᵗX
//   - **Rank check**: an SVD on the column-equilibrated design matrix rejects collinear
//     predictors before anything is solved
//   - **Complete summary**: standard errors, t statistics, two-sided p-values, R², adjusted R²,
//     the overall F test, σ̂ and RMSE
//   - **Reusable encoding**: the Model keeps the design encoder so prediction inputs are
//     encoded exactly like the fitted rows
//
// # Usage
//
//	ds, _ := ingest.ReadFile("houses.csv")
//	split, _ := ds.Split(0.7, 42)
//
//	model, err := regression.Fit(ds, regression.Spec{
//	    Response:   "price",
//	    Predictors: []string{"area", "rooms", "district"},
//	}, split.Train)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary := model.Summary()
//	fmt.Printf("R²=%.3f\n", summary.RSquared)
//	for _, c := range summary.Coefficients {
//	    fmt.Printf("%s: %.3f (p=%.3g)\n", c.Term, c.Estimate, c.PValue)
//	}
//
// # Failure Modes
//
// Every error wraps one sentinel from package errs: ErrInvalidSpec for bad column references,
// ErrMissingValue for NaN, ±Inf or empty categories in the fitted rows, ErrInsufficientData when
// fewer rows than coefficients plus one remain, ErrDegenerateResponse for a constant response
// and ErrRankDeficiency for collinear predictors.
package regression
