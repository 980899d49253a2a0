package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lesleyera/cncreport/internal/analytics"
	"github.com/lesleyera/cncreport/internal/authors"
	"github.com/lesleyera/cncreport/internal/config"
	"github.com/lesleyera/cncreport/internal/report"
	"github.com/lesleyera/cncreport/internal/scrape"
	"github.com/lesleyera/cncreport/internal/server"
	"github.com/lesleyera/cncreport/internal/store"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logger     zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "cncreport",
	Short:   "Weekly traffic reports for Cook&Chef News",
	Long:    "cncreport pulls GA4 traffic and demographics, enriches top articles from the live site, and builds the weekly report tables.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger()

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(weeksCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cacheCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cncreport", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/cncreport/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to set the GA4 property ID and token environment variable.")
		return nil
	},
}

// --- weeks command ---

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "List the selectable report weeks",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, cleanup, err := buildLoader()
		if err != nil {
			return err
		}
		defer cleanup()

		for _, r := range loader.Weeks() {
			fmt.Printf("%-8s %s\n", r.Label, r.Display())
		}
		return nil
	},
}

// --- report command ---

var (
	reportWeek string
	reportOut  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the report bundle for a week and write it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, cleanup, err := buildLoader()
		if err != nil {
			return err
		}
		defer cleanup()

		bundle := loader.LoadWeek(context.Background(), reportWeek)

		data, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}

		if reportOut == "" || reportOut == "-" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(reportOut, data, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("Wrote %s (%s, %s)\n", reportOut, bundle.WeekLabel, bundle.Period)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportWeek, "week", "w", "", "Week label (e.g. 11주차); defaults to the most recent week")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Output file (default stdout)")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the report API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, cleanup, err := buildLoader()
		if err != nil {
			return err
		}
		defer cleanup()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(loader, port, logger)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- cache command ---

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the scrape cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show scrape cache contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.Count()
		if err != nil {
			return err
		}
		fmt.Printf("Cache: %s\n", st.Path())
		fmt.Printf("Cached articles: %d\n", n)
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop expired entries from the scrape cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.Purge()
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d expired entries\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
}

// --- wiring ---

func openStore() (*store.Store, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return store.Open(filepath.Join(dataDir, "cncreport.db"), cfg.CacheTTL())
}

// buildLoader assembles the pipeline from config. The returned cleanup
// closes the scrape cache when one was opened.
func buildLoader() (*report.Loader, func(), error) {
	client := analytics.NewGA4Client(
		cfg.Analytics.PropertyID,
		cfg.Analytics.Endpoint,
		cfg.Analytics.TokenEnv,
		cfg.AnalyticsTimeout(),
	)
	if !client.IsConfigured() {
		logger.Warn().
			Str("token_env", cfg.Analytics.TokenEnv).
			Msg("analytics token not set; reports will come back empty")
	}

	cleanup := func() {}
	var cache scrape.Cache
	if cfg.Scrape.CacheEnabled {
		st, err := openStore()
		if err != nil {
			return nil, nil, fmt.Errorf("opening scrape cache: %w", err)
		}
		cache = st
		cleanup = func() { st.Close() }
	}

	scraper := scrape.New(cfg.Site.Origin, cfg.ScrapeTimeout(), cache, logger)
	resolver := authors.NewResolver(cfg.Authors.Mapping)

	return report.NewLoader(client, scraper, resolver, cfg, logger), cleanup, nil
}
