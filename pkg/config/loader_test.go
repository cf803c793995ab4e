package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrasync/infrasync-go/pkg/config"
)

type loaderTestConfig struct {
	Host    string        `env:"LOADER_TEST_HOST" envDefault:"localhost"`
	Timeout time.Duration `env:"LOADER_TEST_TIMEOUT" envDefault:"5s"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg loaderTestConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoad_CachesPerType(t *testing.T) {
	var first loaderTestConfig
	require.NoError(t, config.Load(&first))

	// Changing the environment after the first load must not affect the
	// cached value for the same type.
	t.Setenv("LOADER_TEST_HOST", "changed.example.com")

	var second loaderTestConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first.Host, second.Host)
}

func TestLoad_NilPointer(t *testing.T) {
	err := config.Load[loaderTestConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

func TestLoad_APIDefaults(t *testing.T) {
	var cfg config.API
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadProfile(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		p, err := config.LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Zero(t, p)
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		p, err := config.LoadProfile("")
		require.NoError(t, err)
		assert.Zero(t, p)
	})

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "profile.yaml")
		require.NoError(t, os.WriteFile(path, []byte("base_url: https://api.example.com\ndefault_org: acme\nquiet: true\n"), 0o600))

		p, err := config.LoadProfile(path)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com", p.BaseURL)
		assert.Equal(t, "acme", p.DefaultOrg)
		assert.True(t, p.Quiet)
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("base_url: [unclosed"), 0o600))

		_, err := config.LoadProfile(path)
		assert.ErrorIs(t, err, config.ErrInvalidProfile)
	})
}
