package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-analytics/pkg/timeseries"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "src/data", cfg.DataDir)
	assert.Equal(t, timeseries.DefaultParams, cfg.Smoothing)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /srv/exports
table: orders
top_n: 10
smoothing:
  method: savgol
  window: 9
anomaly_threshold: 2.5
`), 0o644))
	t.Setenv("TICKETS_TABLE", "orders_2024")
	t.Setenv("TICKETS_SNAPSHOT", "/tmp/snap.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/exports", cfg.DataDir)
	assert.Equal(t, "orders_2024", cfg.Table)
	assert.Equal(t, "/tmp/snap.json", cfg.Snapshot)
	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, timeseries.Params{Method: timeseries.MethodSavgol, Window: 9, Alpha: 0.3}, cfg.Smoothing)
	assert.Equal(t, 2.5, cfg.AnomalyThreshold)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("top_n: [1, 2"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"no source":      func(c *Config) { c.DataDir = "" },
		"half window":    func(c *Config) { c.StartMonth = "012024" },
		"bad month":      func(c *Config) { c.StartMonth, c.EndMonth = "132024", "012025" },
		"even savgol":    func(c *Config) { c.Smoothing = timeseries.Params{Method: timeseries.MethodSavgol, Window: 6} },
		"zero top":       func(c *Config) { c.TopN = 0 },
		"zero cache":     func(c *Config) { c.CacheSize = 0 },
		"zero threshold": func(c *Config) { c.AnomalyThreshold = 0 },
	} {
		cfg := Default()
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}

	cfg := Default()
	cfg.DataDir, cfg.DSN = "", "sqlite:///tmp/x.db"
	cfg.StartMonth, cfg.EndMonth = "012024", "062024"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "012024", cfg.Run().StartMonth)
}
