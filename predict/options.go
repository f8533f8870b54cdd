package predict

import (
	"github.com/sirupsen/logrus"

	"github.com/arloliu/lmkit/internal/logging"
	"github.com/arloliu/lmkit/internal/options"
)

// DefaultConfidence is the interval confidence level used by the command-line tool when none
// is given.
const DefaultConfidence = 0.95

// Config holds settings for Predict and Evaluate.
type Config struct {
	Logger logrus.FieldLogger
}

func defaultConfig() Config {
	return Config{Logger: logging.Discard()}
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(l logrus.FieldLogger) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Logger = logging.OrDiscard(l)
	})
}
