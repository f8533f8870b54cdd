package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/lmkit"
	"github.com/arloliu/lmkit/cmd/lmkit/internal/config"
	"github.com/arloliu/lmkit/cmd/lmkit/internal/render"
	"github.com/arloliu/lmkit/correlation"
	"github.com/arloliu/lmkit/dataset"
)

type runOptions struct {
	config   string
	parallel int
}

func newRunCmd(a *app) *cobra.Command {
	o := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the analyses of a YAML configuration",
		Long: `Run every job of a batch configuration against one data file.

The data file is read once and shared read-only by all jobs, which run concurrently.
A failing job is reported with its error and does not stop the others; the command
exits non-zero if any job failed.

CONFIGURATION:
  data: ${DATA_DIR}/houses.csv     # environment references are expanded
  confidence: 0.95
  jobs:
    - name: price
      kind: regression             # regression, anova or correlation
      response: price
      predictors: [area, rooms, district]
      split: 0.7
      seed: 42
    - name: district
      kind: anova
      factor: district
      response: price

EXAMPLES:
  lmkit run --config analysis.yaml
  lmkit run --config analysis.yaml --parallel 2 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.config, "config", "c", "", "batch configuration file")
	f.IntVar(&o.parallel, "parallel", runtime.GOMAXPROCS(0), "number of jobs run at once")
	mustMarkRequired(cmd, "config")

	return cmd
}

func (a *app) run(ctx context.Context, o *runOptions) error {
	if o.parallel < 1 {
		return fmt.Errorf("--parallel must be at least 1, got %d", o.parallel)
	}

	cfg, err := config.Load(o.config)
	if err != nil {
		return err
	}

	if _, err := a.session.Load(cfg.Data, cfg.IngestOptions()...); err != nil {
		return err
	}
	ds, err := a.session.Dataset()
	if err != nil {
		return err
	}

	report := &render.BatchReport{
		Session: a.session.ID,
		Source:  cfg.Data,
		Jobs:    make([]render.JobReport, len(cfg.Jobs)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallel)
	for i, job := range cfg.Jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report.Jobs[i] = a.runJob(ds, job)

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	if err := a.renderer.Render(report); err != nil {
		return err
	}

	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d of %d jobs failed", n, len(report.Jobs))
	}

	return nil
}

// runJob runs one job. Jobs share ds, which is never mutated.
func (a *app) runJob(ds *dataset.Dataset, job config.Job) render.JobReport {
	logger := a.session.Logger().WithFields(logrus.Fields{"job": job.Name, "kind": job.Kind})
	opts := []lmkit.Option{
		lmkit.WithConfidence(job.Confidence),
		lmkit.WithLogger(logger),
	}

	rep := render.JobReport{Name: job.Name, Kind: job.Kind}

	var err error
	switch job.Kind {
	case config.KindRegression:
		rep.Regression, err = lmkit.FitRegression(ds, job.Response, job.Predictors, job.Split, job.SplitSeed(), opts...)
	case config.KindANOVA:
		rep.ANOVA, err = lmkit.FitANOVA(ds, job.Factor, job.Response, opts...)
	case config.KindCorrelation:
		var m *correlation.Matrix
		m, err = lmkit.Correlate(ds)
		if err == nil {
			tbl := m.Table()
			rep.Correlation = &tbl
		}
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}

	if err != nil {
		logger.WithError(err).Warn("job failed")
		rep.Error = err.Error()
		rep.Regression, rep.ANOVA, rep.Correlation = nil, nil, nil

		return rep
	}

	logger.Info("job finished")

	return rep
}
