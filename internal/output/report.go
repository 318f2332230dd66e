// Package output provides terminal output utilities for pkgsentry.
//
// Table rendering uses ASCII characters and ANSI color codes; colors are
// emitted only when stdout is a TTY and NO_COLOR is unset.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/pkgsentry/internal/store"
	"github.com/blackwell-systems/pkgsentry/internal/vulnfeed"
)

// ANSI color codes for severity display
const (
	colorReset   = "\033[0m"
	colorYellow  = "\033[33m"
	colorRed     = "\033[31m"
	colorMagenta = "\033[35m"
	colorGray    = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// severityColor returns the ANSI color for a severity value.
func severityColor(sev vulnfeed.Severity) string {
	switch sev {
	case vulnfeed.SeverityCritical:
		return colorMagenta
	case vulnfeed.SeverityHigh:
		return colorRed
	case vulnfeed.SeverityModerate:
		return colorYellow
	case vulnfeed.SeverityLow:
		return ""
	default:
		return colorGray
	}
}

// RenderFindingsTable renders the audit findings in report order.
func RenderFindingsTable(findings []vulnfeed.Finding) string {
	if len(findings) == 0 {
		return "No vulnerabilities found.\n"
	}

	useColors := IsColorEnabled()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %-10s %-18s %s\n",
		"Package", "Severity", "CVE", "Details"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, f := range findings {
		sev := f.Severity.String()
		// Pad before coloring so escape codes do not break alignment.
		padded := fmt.Sprintf("%-10s", sev)
		if useColors {
			if c := severityColor(f.Severity); c != "" {
				padded = c + padded + colorReset
			}
		}
		sb.WriteString(fmt.Sprintf("%-20s %s %-18s %s\n",
			truncate(f.Package, 20), padded, f.ID, truncate(f.Details, 40)))
	}

	return sb.String()
}

// RenderHistoryTable renders past audit runs, newest first.
func RenderHistoryTable(runs []*store.AuditRun) string {
	if len(runs) == 0 {
		return "No audit runs recorded yet.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %-9s %-6s %-5s %-9s %-5s %-9s %s\n",
		"Started", "Packages", "Total", "Low", "Moderate", "High", "Critical", "Unknown"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%-20s %-9d %-6d %-5d %-9d %-5d %-9d %d\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.PackageCount,
			run.Total,
			run.Low,
			run.Moderate,
			run.High,
			run.Critical,
			run.Unknown,
		))
	}

	return sb.String()
}

// truncate shortens s to max runes, appending "…" when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
