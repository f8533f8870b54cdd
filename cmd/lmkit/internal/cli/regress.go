package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/lmkit"
	"github.com/arloliu/lmkit/cmd/lmkit/internal/render"
	"github.com/arloliu/lmkit/dataset"
	"github.com/arloliu/lmkit/ingest"
	"github.com/arloliu/lmkit/predict"
	"github.com/arloliu/lmkit/regression"
)

type regressOptions struct {
	data       string
	response   string
	predictors []string
	split      float64
	seed       uint64
	confidence float64
	predict    string
}

func newRegressCmd(a *app) *cobra.Command {
	o := &regressOptions{}

	cmd := &cobra.Command{
		Use:   "regress",
		Short: "Fit an ordinary least squares regression",
		Long: `Fit a linear regression of a numeric response on numeric and categorical predictors.

The rows are split into a training and a test set with a seeded shuffle; the model is
fitted on the training rows, checked for autocorrelation, heteroscedasticity,
non-normal residuals and multicollinearity, and evaluated on the test rows.
Categorical predictors are dummy coded against their first level in sort order.

With --predict, the fitted model also predicts every row of a second file, with
prediction and mean-response confidence intervals.

EXAMPLES:
  lmkit regress -d houses.csv -y price -x area,rooms,district
  lmkit regress -d houses.csv -y price -x area --split 1 --predict new_houses.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.regress(o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.data, "data", "d", "", "data file (delimited text or .lmks snapshot)")
	f.StringVarP(&o.response, "response", "y", "", "numeric response column")
	f.StringSliceVarP(&o.predictors, "predictors", "x", nil, "comma-separated predictor columns")
	f.Float64Var(&o.split, "split", 0.7, "fraction of rows used for training, in [0.5, 1]")
	f.Uint64Var(&o.seed, "seed", 42, "seed of the train/test split")
	f.Float64Var(&o.confidence, "confidence", lmkit.DefaultConfidence, "confidence level of prediction intervals")
	f.StringVar(&o.predict, "predict", "", "file of new rows to predict")
	mustMarkRequired(cmd, "data", "response", "predictors")

	return cmd
}

func (a *app) regress(o *regressOptions) error {
	if err := a.load(o.data); err != nil {
		return err
	}
	ds, err := a.session.Dataset()
	if err != nil {
		return err
	}

	ra, err := lmkit.FitRegression(ds, o.response, o.predictors, o.split, o.seed,
		lmkit.WithConfidence(o.confidence),
		lmkit.WithLogger(a.session.Logger()),
	)
	if err != nil {
		return err
	}
	a.session.SetModel(ra.Model)

	report := &render.RegressionReport{
		Session:  a.session.ID,
		Source:   o.data,
		Analysis: ra,
	}

	if o.predict != "" {
		report.Prediction, err = a.predict(o.predict, o.confidence)
		if err != nil {
			return err
		}
	}

	return a.renderer.Render(report)
}

// predict reads new rows and predicts them with the session's model. Predictor columns are
// read with the types the model was fitted with, so a numeric-looking category is not
// inferred as a number.
func (a *app) predict(path string, confidence float64) (*predict.Result, error) {
	model, err := a.session.Model()
	if err != nil {
		return nil, err
	}

	opts, err := a.ingestOptions(true)
	if err != nil {
		return nil, err
	}
	opts = append(opts, modelTypes(model)...)
	opts = append(opts, ingest.WithLogger(a.session.Logger()))

	rows, err := ingest.ReadFile(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return lmkit.Predict(model, rows, confidence, lmkit.WithLogger(a.session.Logger()))
}

func modelTypes(m *regression.Model) []ingest.Option {
	terms := m.Encoder().Terms()
	opts := make([]ingest.Option, 0, len(terms)+1)
	for _, t := range terms {
		opts = append(opts, ingest.WithTypeHint(t.Name, t.Type))
	}
	opts = append(opts, ingest.WithTypeHint(m.Spec().Response, dataset.TypeNumeric))

	return opts
}
