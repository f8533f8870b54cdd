package anova

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/internal/logging"
	"github.com/arloliu/lmkit/internal/options"
)

// DefaultConfidence is the family-wise confidence level of the post-hoc intervals.
const DefaultConfidence = 0.95

// Config holds settings for Fit.
type Config struct {
	// Confidence is the family-wise confidence level of the Tukey intervals.
	Confidence float64
	Logger     logrus.FieldLogger
}

func defaultConfig() Config {
	return Config{
		Confidence: DefaultConfidence,
		Logger:     logging.Discard(),
	}
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

// WithConfidence sets the post-hoc confidence level. It must lie in (0, 1).
func WithConfidence(level float64) Option {
	return options.New(func(cfg *Config) error {
		if !(level > 0 && level < 1) {
			return fmt.Errorf("%w: confidence %v outside (0, 1)", errs.ErrInvalidSpec, level)
		}
		cfg.Confidence = level

		return nil
	})
}

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(l logrus.FieldLogger) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Logger = logging.OrDiscard(l)
	})
}
