package vulnfeed

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/blackwell-systems/pkgsentry/internal/inventory"
)

// testDB builds a snapshot in the feed's document shape.
func testDB() Database {
	return Database{
		"foo": {
			"r1": releaseEntry{CVEs: []CVE{
				{Severity: "HIGH", ID: "CVE-2024-0001", Details: "buffer overflow"},
				{Severity: "HIGH", ID: "CVE-2024-0002", Details: "use after free"},
			}},
		},
		"bar": {
			"2.0-r5": releaseEntry{CVEs: []CVE{
				{Severity: "LOW", ID: "CVE-2023-9999", Details: "timing leak"},
			}},
		},
	}
}

func TestLookup_ExactMatchOnly(t *testing.T) {
	db := testDB()

	if got := db.Lookup("foo", "r1"); len(got) != 2 {
		t.Errorf("Lookup(foo, r1) = %d entries; want 2", len(got))
	}

	// Any formatting drift yields zero results.
	for _, release := range []string{"r1 ", " r1", "R1", "v-r1"} {
		if got := db.Lookup("foo", release); got != nil {
			t.Errorf("Lookup(foo, %q) = %v; want nil", release, got)
		}
	}
	for _, name := range []string{"Foo", "foo ", "foobar"} {
		if got := db.Lookup(name, "r1"); got != nil {
			t.Errorf("Lookup(%q, r1) = %v; want nil", name, got)
		}
	}
}

func TestCorrelate_Aggregation(t *testing.T) {
	pkgs := []inventory.Package{
		{Name: "foo", Release: "r1"},
		{Name: "baz", Release: "r9"}, // not in the feed
	}

	r := Correlate(pkgs, testDB())

	if r.Total != 2 || r.High != 2 {
		t.Errorf("report = %+v; want total=2 high=2", r)
	}
	if r.Low != 0 || r.Moderate != 0 || r.Critical != 0 || r.Unknown != 0 {
		t.Errorf("report = %+v; want all other buckets zero", r)
	}
}

func TestCorrelate_UnknownSeverityCountsInTotalOnly(t *testing.T) {
	db := Database{
		"qux": {
			"r1": releaseEntry{CVEs: []CVE{
				{Severity: "SEVERE", ID: "CVE-2024-1111"},
				{Severity: "critical", ID: "CVE-2024-2222"},
			}},
		},
	}

	r := Correlate([]inventory.Package{{Name: "qux", Release: "r1"}}, db)

	if r.Total != 2 {
		t.Errorf("total = %d; want 2 (unknown severities still count)", r.Total)
	}
	if r.Unknown != 1 || r.Critical != 1 {
		t.Errorf("report = %+v; want unknown=1 critical=1", r)
	}
	if r.Low+r.Moderate+r.High != 0 {
		t.Errorf("report = %+v; want named buckets untouched by unknown severity", r)
	}
}

func TestCorrelate_FindingOrder(t *testing.T) {
	pkgs := []inventory.Package{
		{Name: "bar", Release: "2.0-r5"},
		{Name: "foo", Release: "r1"},
	}

	r := Correlate(pkgs, testDB())

	var ids []string
	for _, f := range r.Findings {
		ids = append(ids, f.ID)
	}
	// Inventory enumeration order first (bar before foo), feed-list order
	// within a package.
	want := []string{"CVE-2023-9999", "CVE-2024-0001", "CVE-2024-0002"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("finding order mismatch (-want +got):\n%s", diff)
	}
}

func TestSummary_Format(t *testing.T) {
	r := &Report{Low: 1, Moderate: 2, High: 3, Critical: 4, Total: 11, Unknown: 1}
	want := "11 vulnerabilities (1 low, 2 moderate, 3 high, 4 critical)"
	if got := r.Summary(); got != want {
		t.Errorf("Summary() = %q; want %q", got, want)
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"LOW", SeverityLow},
		{"low", SeverityLow},
		{"MEDIUM", SeverityModerate},
		{"moderate", SeverityModerate},
		{"High", SeverityHigh},
		{"CRITICAL", SeverityCritical},
		{" critical ", SeverityCritical},
		{"SEVERE", SeverityUnknown},
		{"", SeverityUnknown},
	}
	for _, tt := range tests {
		if got := ParseSeverity(tt.in); got != tt.want {
			t.Errorf("ParseSeverity(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
