package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, 10*time.Second, cfg.Provider.Timeout())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cointether.toml")
	body := `
[provider]
timeout_sec = 3
primary_currency = "eur"

[conversion]
secondary_currency = "GBP"
rate = 0.85

[storage]
cache_path = "/tmp/x/cache.json"

[history]
max_samples = 10
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, cfg.Provider.Timeout())
	require.Equal(t, "eur", cfg.Provider.PrimaryCurrency)
	require.Equal(t, "GBP", cfg.Conversion.SecondaryCurrency)
	require.InEpsilon(t, 0.85, cfg.Conversion.Rate, 1e-9)
	require.Equal(t, "/tmp/x/cache.json", cfg.Storage.CachePath)
	require.Equal(t, 10, cfg.History.MaxSamples)
	// untouched sections keep defaults
	require.Equal(t, Default().Storage.HistoryPath, cfg.Storage.HistoryPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COINTETHER_CONVERSION_RATE", "90.5")
	t.Setenv("COINTETHER_HISTORY_PATH", "/var/lib/cointether/history.json")
	t.Setenv("COINTETHER_PROVIDER_TIMEOUT_SEC", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.InEpsilon(t, 90.5, cfg.Conversion.Rate, 1e-9)
	require.Equal(t, "/var/lib/cointether/history.json", cfg.Storage.HistoryPath)
	require.Equal(t, 10, cfg.Provider.TimeoutSec)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[provider\n"), 0o600))

	_, err := Load(path)
	require.ErrorContains(t, err, "parse config")
}

func TestValidate_RejectsNonPositiveRate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Conversion.Rate = 0
	require.Error(t, cfg.Validate())
}
