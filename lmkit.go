// Package lmkit fits linear models, checks their assumptions and predicts with them.
//
// The package is the programmatic surface over the engine packages:
//
//   - FitRegression splits a dataset, fits an ordinary least squares model on the training
//     rows, runs the four residual diagnostics and evaluates the model on the held-out rows
//   - FitANOVA runs a one-way analysis of variance with Tukey HSD post-hoc comparison
//   - Predict computes point predictions with prediction and confidence intervals
//   - Correlate computes the Pearson correlation matrix of the numeric columns
//
// Every function is a pure function of its inputs and every result is immutable, so results
// can be shared between goroutines. Errors wrap the sentinels of package errs.
//
// # Basic Usage
//
//	ds, err := ingest.ReadFile("houses.csv")
//	if err != nil {
//	    return err
//	}
//
//	ra, err := lmkit.FitRegression(ds, "price", []string{"area", "rooms", "district"}, 0.7, 42)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(ra.Summary)
//	for _, r := range ra.Diagnostics.Results() {
//	    fmt.Println(r)
//	}
//
// # Package Structure
//
// The wrappers here cover the common path. The dataset, regression, diagnostics, anova,
// predict and correlation packages expose the individual steps for finer control.
package lmkit

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/lmkit/anova"
	"github.com/arloliu/lmkit/correlation"
	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/diagnostics"
	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/internal/logging"
	"github.com/arloliu/lmkit/internal/options"
	"github.com/arloliu/lmkit/linalg"
	"github.com/arloliu/lmkit/predict"
	"github.com/arloliu/lmkit/regression"
)

// DefaultConfidence is the confidence level of held-out prediction intervals and post-hoc
// comparisons.
const DefaultConfidence = 0.95

// Config holds settings shared by the top-level functions.
type Config struct {
	Confidence    float64
	RankTolerance float64
	Logger        logrus.FieldLogger
}

func defaultConfig() Config {
	return Config{
		Confidence:    DefaultConfidence,
		RankTolerance: linalg.DefaultRankTolerance,
		Logger:        logging.Discard(),
	}
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

// WithConfidence sets the confidence level. It must lie in (0, 1).
func WithConfidence(level float64) Option {
	return options.New(func(cfg *Config) error {
		if !(level > 0 && level < 1) {
			return fmt.Errorf("%w: confidence %v outside (0, 1)", errs.ErrInvalidSpec, level)
		}
		cfg.Confidence = level

		return nil
	})
}

// WithRankTolerance sets the relative tolerance of the regression rank check.
func WithRankTolerance(tol float64) Option {
	return options.NoError(func(cfg *Config) {
		cfg.RankTolerance = tol
	})
}

// WithLogger sets the logger passed down to every step. A nil logger keeps the default.
func WithLogger(l logrus.FieldLogger) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Logger = logging.OrDiscard(l)
	})
}

// RegressionAnalysis is the outcome of FitRegression.
type RegressionAnalysis struct {
	Model       *regression.Model  `json:"-" yaml:"-"`
	Summary     regression.Summary `json:"summary" yaml:"summary"`
	Split       dataset.Split      `json:"split" yaml:"split"`
	Diagnostics diagnostics.Report `json:"diagnostics" yaml:"diagnostics"`
	// Evaluation scores the model on the held-out rows; nil when the split keeps every row
	// or when scoring failed, in which case EvaluationErr holds the reason.
	Evaluation      *predict.Result `json:"evaluation,omitempty" yaml:"evaluation,omitempty"`
	EvaluationErr   error           `json:"-" yaml:"-"`
	EvaluationError string          `json:"evaluation_error,omitempty" yaml:"evaluation_error,omitempty"`
}

// FitRegression fits response on predictors using a deterministic train/test split.
//
// Parameters:
//   - ds: Dataset holding the response and predictor columns
//   - response: Numeric response column
//   - predictors: Numeric or categorical predictor columns
//   - splitFraction: Share of rows used for training, in [0.5, 1]
//   - seed: Split seed; equal seeds give equal splits
//   - opts: Optional settings (WithConfidence, WithRankTolerance, WithLogger)
//
// Returns:
//   - *RegressionAnalysis: Model, summary, split, diagnostics and held-out evaluation
//   - error: Any error of dataset.NewSplit or regression.Fit
//
// A held-out row the model cannot score, such as one with a category level absent from the
// training rows, does not fail the call; the failure is reported in EvaluationErr.
func FitRegression(ds *dataset.Dataset, response string, predictors []string, splitFraction float64,
	seed uint64, opts ...Option,
) (*RegressionAnalysis, error) {
	cfg, err := options.Build(defaultConfig(), opts...)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, fmt.Errorf("%w: nil dataset", errs.ErrInvalidSpec)
	}

	split, err := ds.Split(splitFraction, seed)
	if err != nil {
		return nil, err
	}

	spec := regression.Spec{Response: response, Predictors: predictors}
	model, err := regression.Fit(ds, spec, split.Train,
		regression.WithRankTolerance(cfg.RankTolerance),
		regression.WithLogger(cfg.Logger),
	)
	if err != nil {
		return nil, err
	}

	ra := &RegressionAnalysis{
		Model:       model,
		Summary:     model.Summary(),
		Split:       split,
		Diagnostics: diagnostics.Run(model, diagnostics.WithLogger(cfg.Logger)),
	}

	if len(split.Test) > 0 {
		ra.Evaluation, ra.EvaluationErr = predict.Evaluate(model, ds, split.Test, cfg.Confidence,
			predict.WithLogger(cfg.Logger))
		if ra.EvaluationErr != nil {
			ra.EvaluationErr = fmt.Errorf("evaluate held-out rows: %w", ra.EvaluationErr)
			ra.EvaluationError = ra.EvaluationErr.Error()
			cfg.Logger.WithError(ra.EvaluationErr).Warn("held-out evaluation failed")
		}
	}

	return ra, nil
}

// FitANOVA runs a one-way ANOVA of response grouped by factor over every row of ds.
func FitANOVA(ds *dataset.Dataset, factor, response string, opts ...Option) (*anova.Analysis, error) {
	cfg, err := options.Build(defaultConfig(), opts...)
	if err != nil {
		return nil, err
	}

	return anova.Fit(ds, anova.Spec{Factor: factor, Response: response},
		anova.WithConfidence(cfg.Confidence),
		anova.WithLogger(cfg.Logger),
	)
}

// Predict predicts every row of rows with model at the given confidence level.
func Predict(model *regression.Model, rows *dataset.Dataset, confidence float64, opts ...Option) (*predict.Result, error) {
	cfg, err := options.Build(defaultConfig(), opts...)
	if err != nil {
		return nil, err
	}

	return predict.Predict(model, rows, confidence, predict.WithLogger(cfg.Logger))
}

// Correlate computes the correlation matrix of the numeric columns of ds.
func Correlate(ds *dataset.Dataset) (*correlation.Matrix, error) {
	return correlation.Correlate(ds)
}
