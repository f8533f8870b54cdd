package cli

import (
	"github.com/spf13/cobra"

	"github.com/arloliu/lmkit"
	"github.com/arloliu/lmkit/cmd/lmkit/internal/render"
)

type anovaOptions struct {
	data       string
	factor     string
	response   string
	confidence float64
}

func newANOVACmd(a *app) *cobra.Command {
	o := &anovaOptions{}

	cmd := &cobra.Command{
		Use:   "anova",
		Short: "Run a one-way analysis of variance",
		Long: `Test whether the mean of a numeric response differs between the levels of a factor.

The report holds the per-group means, the ANOVA table with the F test, normality and
heteroscedasticity checks of the residuals, and Tukey HSD comparisons of every pair of
groups with family-wise confidence intervals. A numeric factor is grouped by value.

EXAMPLES:
  lmkit anova -d yields.csv -g fertilizer -y yield
  lmkit anova -d yields.csv -g fertilizer -y yield --confidence 0.99 -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.anova(o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.data, "data", "d", "", "data file (delimited text or .lmks snapshot)")
	f.StringVarP(&o.factor, "factor", "g", "", "grouping column")
	f.StringVarP(&o.response, "response", "y", "", "numeric response column")
	f.Float64Var(&o.confidence, "confidence", lmkit.DefaultConfidence, "family-wise confidence level of the Tukey intervals")
	mustMarkRequired(cmd, "data", "factor", "response")

	return cmd
}

func (a *app) anova(o *anovaOptions) error {
	if err := a.load(o.data); err != nil {
		return err
	}
	ds, err := a.session.Dataset()
	if err != nil {
		return err
	}

	analysis, err := lmkit.FitANOVA(ds, o.factor, o.response,
		lmkit.WithConfidence(o.confidence),
		lmkit.WithLogger(a.session.Logger()),
	)
	if err != nil {
		return err
	}

	return a.renderer.Render(&render.ANOVAReport{
		Session:  a.session.ID,
		Source:   o.data,
		Analysis: analysis,
	})
}
