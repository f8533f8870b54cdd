package regression

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/internal/logging"
	"github.com/arloliu/lmkit/internal/options"
	"github.com/arloliu/lmkit/linalg"
)

// FitConfig holds tuning parameters for Fit.
type FitConfig struct {
	// RankTolerance is the relative singular-value cutoff of the rank check.
	RankTolerance float64
	// Logger receives debug entries about the fit.
	Logger logrus.FieldLogger
}

// defaultFitConfig returns the default config (rank tolerance 1e-7, discard logger).
func defaultFitConfig() FitConfig {
	return FitConfig{
		RankTolerance: linalg.DefaultRankTolerance,
		Logger:        logging.Discard(),
	}
}

// FitOption is a functional option for FitConfig.
type FitOption = options.Option[*FitConfig]

// WithRankTolerance sets the relative tolerance used to decide that the design matrix is
// rank deficient. It must lie in (0, 1).
func WithRankTolerance(tol float64) FitOption {
	return options.New(func(cfg *FitConfig) error {
		if !(tol > 0 && tol < 1) {
			return fmt.Errorf("%w: rank tolerance %v outside (0, 1)", errs.ErrInvalidSpec, tol)
		}
		cfg.RankTolerance = tol

		return nil
	})
}

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(l logrus.FieldLogger) FitOption {
	return options.NoError(func(cfg *FitConfig) {
		cfg.Logger = logging.OrDiscard(l)
	})
}
