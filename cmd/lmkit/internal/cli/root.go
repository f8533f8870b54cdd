package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arloliu/lmkit/cmd/lmkit/internal/render"
	"github.com/arloliu/lmkit/cmd/lmkit/internal/session"
	"github.com/arloliu/lmkit/format"
	"github.com/arloliu/lmkit/ingest"
	"github.com/arloliu/lmkit/internal/logging"
)

// app is the state shared by the commands of one invocation.
type app struct {
	logLevel  string
	logFormat string
	output    string
	delimiter string
	maxLevels int
	types     map[string]string

	renderer *render.Renderer
	session  *session.Session
}

// NewRootCommand builds the lmkit command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "lmkit",
		Short: "Fit linear models, check their assumptions and predict with them",
		Long: `lmkit fits ordinary least squares regressions and one-way ANOVAs on tabular data.

Data files are delimited text (comma, tab, semicolon or pipe, detected automatically)
with a header row, or .lmks snapshots written by "lmkit snapshot". Column types are
inferred: all-numeric columns are numeric, columns with few distinct values are
categorical, the rest are text.

EXAMPLES:
  # Regression with a 70/30 train/test split
  lmkit regress --data houses.csv --response price --predictors area,rooms,district

  # One-way ANOVA with Tukey HSD at 99%
  lmkit anova --data yields.csv --factor fertilizer --response yield --confidence 0.99

  # Correlation matrix of the numeric columns, as JSON
  lmkit correlate --data houses.csv --output json

  # Several analyses from one configuration, four at a time
  lmkit run --config analysis.yaml --parallel 4`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", string(logging.FormatText), "log format (text, json)")
	flags.StringVarP(&a.output, "output", "o", string(render.FormatText), "report format (text, json, yaml)")
	flags.StringVar(&a.delimiter, "delimiter", "", "field delimiter of text data files (default: detect)")
	flags.IntVar(&a.maxLevels, "max-levels", ingest.DefaultMaxLevels, "largest distinct-value count inferred as categorical")
	flags.StringToStringVar(&a.types, "column-type", nil, "override inferred column types, e.g. zip=categorical")

	root.AddCommand(
		newRegressCmd(a),
		newANOVACmd(a),
		newCorrelateCmd(a),
		newSnapshotCmd(a),
		newRunCmd(a),
		newVersionCmd(),
	)

	return root
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger, err := logging.New(cmd.ErrOrStderr(), a.logLevel, logging.Format(a.logFormat))
	if err != nil {
		return err
	}

	f, err := render.ParseFormat(a.output)
	if err != nil {
		return err
	}

	a.renderer = render.New(cmd.OutOrStdout(), f)
	a.session = session.New(logger)

	return nil
}

// ingestOptions converts the global ingest flags into ingest options. With hintOnly, the
// --column-type overrides do not require the columns to exist.
func (a *app) ingestOptions(hintOnly bool) ([]ingest.Option, error) {
	opts := []ingest.Option{ingest.WithMaxLevels(a.maxLevels)}

	if a.delimiter != "" {
		d := []rune(a.delimiter)
		if len(d) != 1 {
			return nil, fmt.Errorf("--delimiter must be a single character, got %q", a.delimiter)
		}
		opts = append(opts, ingest.WithDelimiter(d[0]))
	}

	for name, typ := range a.types {
		t, ok := format.ParseColumnType(typ)
		if !ok {
			return nil, fmt.Errorf("--column-type %s=%s: unknown type (want numeric, categorical or text)", name, typ)
		}
		if hintOnly {
			opts = append(opts, ingest.WithTypeHint(name, t))
		} else {
			opts = append(opts, ingest.WithColumnType(name, t))
		}
	}

	return opts, nil
}

// load reads path into the session using the global ingest flags.
func (a *app) load(path string) error {
	opts, err := a.ingestOptions(false)
	if err != nil {
		return err
	}

	_, err = a.session.Load(path, opts...)

	return err
}

func mustMarkRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
