package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qvx-labs/rqport/core/config"
	"github.com/qvx-labs/rqport/core/db"
	"github.com/qvx-labs/rqport/core/validation"
	"github.com/qvx-labs/rqport/internal/logger"
)

var (
	// Connection flags, shared by every subcommand
	flagHost        string
	flagPort        int
	flagHTTPS       bool
	flagUser        string
	flagPass        string
	flagConsistency string
	flagProfile     string

	flagVerbose bool
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "rqport",
	Short: "Import and export data for a distributed SQLite store",
	Long: `rqport moves data in and out of a distributed SQLite store over its
HTTP API. It streams large CSV and SQL dump files into tables with batched
parameterized writes, and exports tables to CSV, SQL or XLSX with concurrent
paginated reads.`,
	Example: `  # Stream a CSV file into a table
  rqport import -i users.csv -t users

  # Replay the INSERT statements of a SQL dump
  rqport import -i backup.sql -f sql

  # Export a table to compressed CSV
  rqport export -t events -o events.csv -z gzip

  # Run a read-only query
  rqport query "SELECT COUNT(*) FROM users"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.SortFlags = false

	pf.StringVarP(&flagHost, "host", "H", "", "Store host (overrides .env and environment)")
	pf.IntVarP(&flagPort, "port", "P", 0, "Store HTTP port (overrides .env and environment)")
	pf.BoolVar(&flagHTTPS, "https", false, "Use HTTPS for store connections")
	pf.StringVarP(&flagUser, "user", "u", "", "Basic auth username")
	pf.StringVarP(&flagPass, "password", "p", "", "Basic auth password")
	pf.StringVarP(&flagConsistency, "consistency", "c", "", "Read consistency level (none, weak, linearizable, strong)")
	pf.StringVar(&flagProfile, "profile", "", "Named connection profile from ~/.rqport.yaml")

	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output with detailed information")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Only display error messages")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if flagVerbose && flagQuiet {
			return fmt.Errorf("cannot use --verbose and --quiet together")
		}
		if flagQuiet {
			logger.SetQuiet(true)
		} else {
			logger.SetVerbose(flagVerbose)
		}
		return nil
	}
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// resolveConfig layers environment config, an optional named profile and
// command-line flag overrides, in that order.
func resolveConfig() (config.Config, error) {
	cfg := config.LoadConfig()

	if flagProfile != "" {
		path := config.DefaultProfilesPath()
		if path == "" {
			return cfg, fmt.Errorf("cannot locate profiles file: unknown home directory")
		}
		var err error
		cfg, err = config.LoadProfile(path, flagProfile, cfg)
		if err != nil {
			return cfg, err
		}
		logger.Debug("Loaded connection profile %q from %s", flagProfile, path)
	}

	if flagHost != "" {
		cfg.Host = flagHost
	}
	if flagPort != 0 {
		cfg.Port = flagPort
	}
	if flagHTTPS {
		cfg.HTTPS = true
	}
	if flagUser != "" {
		cfg.User = flagUser
	}
	if flagPass != "" {
		cfg.Pass = flagPass
	}
	if flagConsistency != "" {
		if err := validation.ValidateConsistency(flagConsistency); err != nil {
			return cfg, err
		}
		cfg.Consistency = flagConsistency
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration error: %w", err)
	}
	logger.Debug("Configuration resolved: host=%s port=%d https=%t consistency=%s",
		cfg.Host, cfg.Port, cfg.HTTPS, cfg.Consistency)
	return cfg, nil
}

// connectStore resolves configuration and opens a connected store handle.
// The caller owns Close.
func connectStore() (db.Store, config.Config, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return nil, cfg, err
	}
	store := db.NewHTTPStore(cfg.BaseURL())
	if err := store.Connect(); err != nil {
		return nil, cfg, fmt.Errorf("failed to connect to store at %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return store, cfg, nil
}

func parseDelimiter(delim string) (rune, error) {
	delim = strings.TrimSpace(delim)
	if delim == "" {
		return 0, fmt.Errorf("delimiter cannot be empty")
	}
	if delim == `\t` {
		return '\t', nil
	}
	runes := []rune(delim)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character (use \\t for tab)")
	}
	return runes[0], nil
}
