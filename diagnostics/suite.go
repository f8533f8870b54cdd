package diagnostics

import (
	"github.com/sirupsen/logrus"

	"github.com/arloliu/lmkit/internal/logging"
	"github.com/arloliu/lmkit/internal/options"
)

// Report holds the four assumption checks of a regression model.
type Report struct {
	Autocorrelation    Result `json:"autocorrelation" yaml:"autocorrelation"`
	Heteroscedasticity Result `json:"heteroscedasticity" yaml:"heteroscedasticity"`
	Normality          Result `json:"normality" yaml:"normality"`
	Multicollinearity  Result `json:"multicollinearity" yaml:"multicollinearity"`
}

// Results returns the four results in a fixed order.
func (r Report) Results() []Result {
	return []Result{r.Autocorrelation, r.Heteroscedasticity, r.Normality, r.Multicollinearity}
}

// Config holds settings for Run.
type Config struct {
	Logger logrus.FieldLogger
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(l logrus.FieldLogger) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Logger = logging.OrDiscard(l)
	})
}

// Run executes every diagnostic against a fitted regression model.
//
// Tests run independently: a test that cannot be carried out is reported as not applicable
// and never prevents the others from running.
func Run(f TermFit, opts ...Option) Report {
	cfg, err := options.Build(Config{Logger: logging.Discard()}, opts...)
	if err != nil {
		cfg.Logger = logging.Discard()
	}

	if !isFitted(f) {
		cfg.Logger.Debug("diagnostics skipped on a model that is not fitted")
		return unfittedReport()
	}

	report := Report{
		Autocorrelation:    DurbinWatson(f),
		Heteroscedasticity: BreuschPagan(f),
		Normality:          Lilliefors(f),
		Multicollinearity:  VIF(f),
	}

	for _, r := range report.Results() {
		entry := cfg.Logger.WithFields(logrus.Fields{
			"test":       r.Test,
			"statistic":  r.Statistic,
			"p_value":    r.PValue,
			"applicable": r.Applicable,
		})
		if !r.Applicable {
			entry.WithField("reason", r.Reason).Debug("diagnostic not applicable")
			continue
		}
		entry.WithField("verdict", r.Verdict).Debug("diagnostic completed")
	}

	return report
}

// isFitted reports false for a nil fit and for models that say they were never fitted.
func isFitted(f TermFit) bool {
	if f == nil {
		return false
	}
	if c, ok := f.(interface{ IsFitted() bool }); ok {
		return c.IsFitted()
	}

	return true
}

func unfittedReport() Report {
	const reason = "model is not fitted"

	return Report{
		Autocorrelation:    notApplicable(TestAutocorrelation, MethodDurbinWatson, reason),
		Heteroscedasticity: notApplicable(TestHeteroscedasticity, MethodBreuschPagan, reason),
		Normality:          notApplicable(TestNormality, MethodLilliefors, reason),
		Multicollinearity:  notApplicable(TestMulticollinearity, MethodVIF, reason),
	}
}
