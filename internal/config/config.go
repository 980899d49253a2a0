package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Site      Site      `yaml:"site"`
	Analytics Analytics `yaml:"analytics"`
	Scrape    Scrape    `yaml:"scrape"`
	Authors   Authors   `yaml:"authors"`
	Report    Report    `yaml:"report"`
	Output    Output    `yaml:"output"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

// Site identifies the news site the reports are built for.
type Site struct {
	Origin string `yaml:"origin"`
	// BrandTerms are matched case- and space-insensitively against page
	// titles to drop the site's own navigation/brand pages from the
	// article tables.
	BrandTerms []string `yaml:"brand_terms"`
}

type Analytics struct {
	PropertyID  string `yaml:"property_id"`
	TokenEnv    string `yaml:"token_env"`
	Endpoint    string `yaml:"endpoint"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

type Scrape struct {
	TimeoutSecs    int  `yaml:"timeout_secs"`
	Top10Workers   int  `yaml:"top10_workers"`
	FullSetWorkers int  `yaml:"full_set_workers"`
	CacheEnabled   bool `yaml:"cache_enabled"`
	CacheTTLSecs   int  `yaml:"cache_ttl_secs"`
}

// Authors carries the static pen-name to real-name mapping table.
type Authors struct {
	Mapping []PenName `yaml:"mapping"`
}

type PenName struct {
	Pen  string `yaml:"pen"`
	Real string `yaml:"real"`
}

type Report struct {
	TrendWeeks   int `yaml:"trend_weeks"`
	TrendWorkers int `yaml:"trend_workers"`
	TopCount     int `yaml:"top_count"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for cncreport.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "cncreport")
}

// DataDir returns the XDG data directory for cncreport.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "cncreport")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/cncreport/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'cncreport init' to create a default config",
		xdgConfig,
	)
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	return parse(DefaultConfigYAML)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Site: Site{
			Origin:     "http://www.cooknchefnews.com",
			BrandTerms: []string{"cook&chef", "쿡앤셰프"},
		},
		Analytics: Analytics{
			TokenEnv:    "GA_ACCESS_TOKEN",
			Endpoint:    "https://analyticsdata.googleapis.com/v1beta",
			TimeoutSecs: 30,
		},
		Scrape: Scrape{
			TimeoutSecs:    3,
			Top10Workers:   10,
			FullSetWorkers: 20,
			CacheEnabled:   true,
			CacheTTLSecs:   86400,
		},
		Report: Report{
			TrendWeeks:   12,
			TrendWorkers: 10,
			TopCount:     10,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "info"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// AnalyticsTimeout returns the analytics request timeout as a duration.
func (c *Config) AnalyticsTimeout() time.Duration {
	if c.Analytics.TimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Analytics.TimeoutSecs) * time.Second
}

// ScrapeTimeout returns the per-article scrape timeout as a duration.
func (c *Config) ScrapeTimeout() time.Duration {
	if c.Scrape.TimeoutSecs <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Scrape.TimeoutSecs) * time.Second
}

// CacheTTL returns the scrape cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	if c.Scrape.CacheTTLSecs <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Scrape.CacheTTLSecs) * time.Second
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
