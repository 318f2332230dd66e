package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgsentry/internal/watcher"
)

var (
	watchSettle time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Re-audit automatically when packages change",
		Long: `Watch the install root and re-run the audit after changes settle.

This runs in the foreground until interrupted. An audit is performed
immediately on startup, then again whenever packages are installed,
removed, or switched, once the filesystem has been quiet for the settle
window.`,
		Example: `  # Watch with the default settle window
  pkgsentry watch

  # Re-audit faster after changes
  pkgsentry watch --settle 500ms`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watcher.DefaultSettle, "quiet period before re-auditing")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	log := newLogger()

	audit := func() {
		report, pkgCount, err := auditOnce(paths, flagFeedURL, flagInstallRoot, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "audit failed: %v\n", err)
			return
		}
		fmt.Printf("[%s] %d packages: %s\n",
			time.Now().Format("15:04:05"), pkgCount, report.Summary())
	}

	// First audit up front so the watch never sits silent on stale state.
	audit()

	w, err := watcher.New(flagInstallRoot, watchSettle, audit)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", flagInstallRoot)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nStopping...")
	return w.Stop()
}
