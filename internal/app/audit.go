package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgsentry/internal/inventory"
	"github.com/blackwell-systems/pkgsentry/internal/output"
	"github.com/blackwell-systems/pkgsentry/internal/store"
	"github.com/blackwell-systems/pkgsentry/internal/vulnfeed"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit installed packages against the CVE feed",
	Long: `Audit the active installed packages against the vulnerability feed.

The feed is fully re-fetched at the start of every run; there is no audit
without a fresh snapshot, so a failed fetch aborts with a non-zero exit and
no partial report. Packages without an active marker or a metadata release
identifier are excluded from coverage (shown with -v).

Completed runs are recorded in the audit history; see 'pkgsentry history'.`,
	Example: `  # Audit the default install root
  pkgsentry audit

  # Audit an alternate root, showing excluded packages
  pkgsentry audit --root /opt/pkg -v`,
	RunE: runAudit,
}

func init() {
	RootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	log := newLogger()

	report, _, err := auditOnce(paths, flagFeedURL, flagInstallRoot, log)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderFindingsTable(report.Findings))
	fmt.Println()
	fmt.Println(report.Summary())
	return nil
}

// auditOnce runs one full audit cycle: feed refresh, inventory scan,
// correlation, and history recording. Shared by the audit command and
// watch mode. Returns the report and the number of packages covered.
func auditOnce(paths Paths, feedURL, root string, log *slog.Logger) (*vulnfeed.Report, int, error) {
	snapshotPath, err := vulnfeed.NewCache(feedURL).Refresh(paths.CacheDir)
	if err != nil {
		return nil, 0, err
	}
	log.Debug("feed snapshot refreshed", "path", snapshotPath)

	db, err := vulnfeed.LoadSnapshot(snapshotPath)
	if err != nil {
		return nil, 0, err
	}

	pkgs, err := inventory.ListActive(root, log)
	if err != nil {
		return nil, 0, err
	}
	log.Debug("inventory scanned", "packages", len(pkgs))

	report := vulnfeed.Correlate(pkgs, db)

	recordRun(paths.DBFile, report, len(pkgs))

	return report, len(pkgs), nil
}

// recordRun stores the completed run in the audit history. History is
// best-effort: a storage problem must not fail an audit that already
// produced its report.
func recordRun(dbFile string, report *vulnfeed.Report, pkgCount int) {
	st, err := store.New(dbFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit history unavailable: %v\n", err)
		return
	}
	defer st.Close()

	if err := st.CreateSchema(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit history unavailable: %v\n", err)
		return
	}

	run := &store.AuditRun{
		StartedAt:    time.Now().UTC(),
		PackageCount: pkgCount,
		Total:        report.Total,
		Low:          report.Low,
		Moderate:     report.Moderate,
		High:         report.High,
		Critical:     report.Critical,
		Unknown:      report.Unknown,
	}
	findings := make([]store.Finding, 0, len(report.Findings))
	for _, f := range report.Findings {
		findings = append(findings, store.Finding{
			Package:  f.Package,
			Severity: f.Severity.String(),
			CVEID:    f.ID,
			Details:  f.Details,
		})
	}

	if _, err := st.InsertRun(run, findings); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record audit run: %v\n", err)
	}
}
