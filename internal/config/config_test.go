package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	require.NoError(t, err)

	assert.Equal(t, "http://www.cooknchefnews.com", cfg.Site.Origin)
	assert.Contains(t, cfg.Site.BrandTerms, "쿡앤셰프")
	assert.Equal(t, "370663478", cfg.Analytics.PropertyID)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 12, cfg.Report.TrendWeeks)
	assert.NotEmpty(t, cfg.Authors.Mapping)

	// The AI-assisted bylines share one real identity.
	shared := 0
	for _, m := range cfg.Authors.Mapping {
		if m.Real == "AI협력" {
			shared++
		}
	}
	assert.Equal(t, 3, shared)
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
analytics:
  property_id: "12345"
server:
  port: 9000
`)
	cfg, err := parse(data)
	require.NoError(t, err)

	assert.Equal(t, "12345", cfg.Analytics.PropertyID)
	assert.Equal(t, 9000, cfg.Server.Port)
	// Defaults survive a partial file.
	assert.Equal(t, "GA_ACCESS_TOKEN", cfg.Analytics.TokenEnv)
	assert.Equal(t, 10, cfg.Scrape.Top10Workers)
	assert.Equal(t, 20, cfg.Scrape.FullSetWorkers)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := parse([]byte("site: [unbalanced"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestResolveConfigPathExplicitMissing(t *testing.T) {
	_, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDurationHelpers(t *testing.T) {
	cfg, err := parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "3s", cfg.ScrapeTimeout().String())
	assert.Equal(t, "30s", cfg.AnalyticsTimeout().String())
	assert.Equal(t, "24h0m0s", cfg.CacheTTL().String())

	cfg.Scrape.TimeoutSecs = 0
	assert.Equal(t, "3s", cfg.ScrapeTimeout().String())
}
