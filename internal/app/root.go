package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgsentry/internal/config"
)

// Version is the pkgsentry release stamp, overridden at build time.
var Version = "0.4.0"

// Collector and feed endpoints. Both are flag-overridable for testing and
// air-gapped mirrors.
const (
	defaultCollectorURL = "https://telemetry.pkgsentry.dev"
	defaultFeedURL      = "https://feed.pkgsentry.dev/cve-feed.json"
	defaultInstallRoot  = "/usr/local/pkg"
)

var (
	flagStateDir     string
	flagInstallRoot  string
	flagFeedURL      string
	flagCollectorURL string
	flagVerbose      bool
	flagDebug        bool

	// RootCmd is the root command for pkgsentry
	RootCmd = &cobra.Command{
		Use:   "pkgsentry",
		Short: "Telemetry and vulnerability audit for symlink-managed packages",
		Long: `pkgsentry records anonymous, opt-in usage events for the package manager
and audits the installed package set against the CVE feed.

Telemetry is local-first: every event is committed to the analytics ledger
before a best-effort post to the collector. A failed post never fails the
package operation that produced it.

Quick Start:
  1. pkgsentry init
  2. pkgsentry audit

Examples:
  # Create the profile and ledger
  pkgsentry init

  # Audit installed packages against the CVE feed
  pkgsentry audit

  # Show past audit runs
  pkgsentry history

  # Re-audit automatically when packages change
  pkgsentry watch`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&flagStateDir, "state-dir", "", "state directory (default: $XDG_STATE_HOME/pkgsentry)")
	RootCmd.PersistentFlags().StringVar(&flagInstallRoot, "root", defaultInstallRoot, "package install root")
	RootCmd.PersistentFlags().StringVar(&flagFeedURL, "feed-url", defaultFeedURL, "vulnerability feed URL")
	RootCmd.PersistentFlags().StringVar(&flagCollectorURL, "collector-url", defaultCollectorURL, "telemetry collector base URL")
	RootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
	RootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "debug logging")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// Paths holds every filesystem location pkgsentry touches. It is resolved
// once per invocation and passed into components; nothing below this layer
// reads the environment.
type Paths struct {
	StateDir   string
	ConfigFile string
	LedgerFile string
	CacheDir   string
	DBFile     string
}

// resolvePaths builds the Paths for this invocation from the --state-dir
// flag or the XDG default, creating the state directory if needed.
func resolvePaths() (Paths, error) {
	dir := flagStateDir
	if dir == "" {
		var err error
		dir, err = config.Dir()
		if err != nil {
			return Paths{}, fmt.Errorf("failed to determine state directory: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Paths{}, fmt.Errorf("failed to create state directory: %w", err)
	}

	return Paths{
		StateDir:   dir,
		ConfigFile: filepath.Join(dir, "config.json"),
		LedgerFile: filepath.Join(dir, "analytics.json"),
		CacheDir:   filepath.Join(dir, "cache"),
		DBFile:     filepath.Join(dir, "history.db"),
	}, nil
}

// newLogger builds the invocation-wide logger. Skipped-package notices log
// at debug level, so they only surface with -v or --debug.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose || flagDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
