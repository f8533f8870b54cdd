package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fitConfig struct {
	Tolerance float64
	Name      string
	Verbose   bool
}

func withTolerance(tol float64) Option[*fitConfig] {
	return New(func(c *fitConfig) error {
		if tol <= 0 {
			return errors.New("tolerance must be positive")
		}
		c.Tolerance = tol

		return nil
	})
}

func withName(name string) Option[*fitConfig] {
	return NoError(func(c *fitConfig) {
		c.Name = name
	})
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &fitConfig{}
		err := Apply(cfg, withName("first"), withTolerance(1e-3), withName("second"))
		require.NoError(t, err)
		require.Equal(t, "second", cfg.Name)
		require.InDelta(t, 1e-3, cfg.Tolerance, 0)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &fitConfig{}
		err := Apply(cfg, withTolerance(-1), withName("never"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "tolerance must be positive")
		require.Empty(t, cfg.Name)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &fitConfig{}
		require.NoError(t, Apply(cfg, nil, withName("x")))
		require.Equal(t, "x", cfg.Name)
	})
}

func TestBuild(t *testing.T) {
	defaults := fitConfig{Tolerance: 1e-7, Name: "default"}

	cfg, err := Build(defaults, withName("custom"))
	require.NoError(t, err)
	require.Equal(t, "custom", cfg.Name)
	require.InDelta(t, 1e-7, cfg.Tolerance, 0)
	require.Equal(t, "default", defaults.Name)

	_, err = Build(defaults, withTolerance(0))
	require.Error(t, err)
}
