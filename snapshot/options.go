package snapshot

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/lmkit/compress"
	"github.com/arloliu/lmkit/format"
	"github.com/arloliu/lmkit/internal/logging"
	"github.com/arloliu/lmkit/internal/options"
)

// DefaultCompression is the codec used when none is chosen.
const DefaultCompression = format.CompressionZstd

// Config holds settings for Encode and Write.
type Config struct {
	Compression format.CompressionType
	Logger      logrus.FieldLogger
}

func defaultConfig() Config {
	return Config{
		Compression: DefaultCompression,
		Logger:      logging.Discard(),
	}
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

// WithCompression selects the body codec.
func WithCompression(t format.CompressionType) Option {
	return options.New(func(cfg *Config) error {
		if _, err := compress.Get(t); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		cfg.Compression = t

		return nil
	})
}

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(l logrus.FieldLogger) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Logger = logging.OrDiscard(l)
	})
}
