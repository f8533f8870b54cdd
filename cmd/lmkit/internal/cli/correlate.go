package cli

import (
	"github.com/spf13/cobra"

	"github.com/arloliu/lmkit"
	"github.com/arloliu/lmkit/cmd/lmkit/internal/render"
)

func newCorrelateCmd(a *app) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "correlate",
		Short: "Compute the Pearson correlation matrix of the numeric columns",
		Long: `Compute the Pearson correlation of every pair of numeric columns.

Each coefficient uses the rows where both columns have a value and is rounded to two
decimals. Pairs are also listed by decreasing strength.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(data); err != nil {
				return err
			}
			ds, err := a.session.Dataset()
			if err != nil {
				return err
			}

			m, err := lmkit.Correlate(ds)
			if err != nil {
				return err
			}

			return a.renderer.Render(&render.CorrelationReport{
				Session: a.session.ID,
				Source:  data,
				Matrix:  m.Table(),
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "data file (delimited text or .lmks snapshot)")
	mustMarkRequired(cmd, "data")

	return cmd
}
