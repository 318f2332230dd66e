package vulnfeed

import (
	"fmt"

	"github.com/blackwell-systems/pkgsentry/internal/inventory"
)

// Finding is one matched vulnerability in the audit report.
type Finding struct {
	Package  string
	Severity Severity
	ID       string
	Details  string
}

// Report aggregates the findings of one audit run. Unknown severities are
// counted in Total and Unknown but in no named bucket.
type Report struct {
	Low      int
	Moderate int
	High     int
	Critical int
	Unknown  int
	Total    int
	Findings []Finding
}

// Correlate joins the scanned inventory against the feed snapshot.
// Findings preserve inventory enumeration order, then feed-list order
// within each package.
func Correlate(pkgs []inventory.Package, db Database) *Report {
	r := &Report{}
	for _, pkg := range pkgs {
		for _, cve := range db.Lookup(pkg.Name, pkg.Release) {
			r.add(pkg.Name, cve)
		}
	}
	return r
}

// add records one matched CVE against the running totals.
func (r *Report) add(pkg string, cve CVE) {
	sev := ParseSeverity(cve.Severity)
	switch sev {
	case SeverityLow:
		r.Low++
	case SeverityModerate:
		r.Moderate++
	case SeverityHigh:
		r.High++
	case SeverityCritical:
		r.Critical++
	default:
		r.Unknown++
	}
	r.Total++
	r.Findings = append(r.Findings, Finding{
		Package:  pkg,
		Severity: sev,
		ID:       cve.ID,
		Details:  cve.Details,
	})
}

// Summary renders the terminal summary line.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d vulnerabilities (%d low, %d moderate, %d high, %d critical)",
		r.Total, r.Low, r.Moderate, r.High, r.Critical)
}
