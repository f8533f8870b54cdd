package ingest

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/lmkit/errs"
	"github.com/arloliu/lmkit/format"
	"github.com/arloliu/lmkit/internal/logging"
	"github.com/arloliu/lmkit/internal/options"
)

// DefaultMaxLevels is the largest number of distinct values a non-numeric column may have and
// still be inferred as categorical.
const DefaultMaxLevels = 50

// DefaultMissing lists the tokens read as missing values.
var DefaultMissing = []string{"", "NA", "NaN", "null"}

// Config holds settings for Read.
type Config struct {
	// Delimiter is the field separator; zero means detect it from the header line.
	Delimiter rune
	MaxLevels int
	Missing   []string
	// Types overrides inference per column name.
	Types map[string]format.ColumnType
	// Hints overrides inference for columns that are present; absent ones are ignored.
	Hints  map[string]format.ColumnType
	Logger logrus.FieldLogger
}

func defaultConfig() Config {
	return Config{
		MaxLevels: DefaultMaxLevels,
		Missing:   DefaultMissing,
		Types:     map[string]format.ColumnType{},
		Hints:     map[string]format.ColumnType{},
		Logger:    logging.Discard(),
	}
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

// WithDelimiter fixes the field separator instead of detecting it.
func WithDelimiter(r rune) Option {
	return options.New(func(cfg *Config) error {
		if r == 0 || r == '"' || r == '\r' || r == '\n' {
			return fmt.Errorf("%w: delimiter %q not allowed", errs.ErrInvalidInput, r)
		}
		cfg.Delimiter = r

		return nil
	})
}

// WithMaxLevels sets the categorical inference threshold. It must be at least 1.
func WithMaxLevels(n int) Option {
	return options.New(func(cfg *Config) error {
		if n < 1 {
			return fmt.Errorf("%w: max levels %d below 1", errs.ErrInvalidInput, n)
		}
		cfg.MaxLevels = n

		return nil
	})
}

// WithMissing replaces the missing-value tokens. Tokens match after trimming spaces.
func WithMissing(tokens ...string) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Missing = make([]string, len(tokens))
		for i, tok := range tokens {
			cfg.Missing[i] = strings.TrimSpace(tok)
		}
	})
}

// WithColumnType forces the type of a column.
func WithColumnType(name string, t format.ColumnType) Option {
	return options.New(func(cfg *Config) error {
		if !t.Valid() {
			return fmt.Errorf("%w: column %q: invalid type %d", errs.ErrInvalidInput, name, t)
		}
		cfg.Types[name] = t

		return nil
	})
}

// WithTypeHint forces the type of a column if the input has it. Unlike WithColumnType, an
// absent column is not an error.
func WithTypeHint(name string, t format.ColumnType) Option {
	return options.New(func(cfg *Config) error {
		if !t.Valid() {
			return fmt.Errorf("%w: column %q: invalid type %d", errs.ErrInvalidInput, name, t)
		}
		cfg.Hints[name] = t

		return nil
	})
}

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(l logrus.FieldLogger) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Logger = logging.OrDiscard(l)
	})
}
