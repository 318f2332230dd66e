package vulnfeed

import "strings"

// Severity is the closed classification for a CVE. Unknown is an explicit
// member: feed entries with unrecognized severity strings still count
// toward the report total, just not toward a named bucket.
type Severity uint

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityModerate
	SeverityHigh
	SeverityCritical
)

// ParseSeverity maps a feed severity string onto the enum. Matching is
// case-insensitive and accepts both "medium" and "moderate" for the second
// bucket, since the feed has used both spellings.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow
	case "medium", "moderate":
		return SeverityModerate
	case "high":
		return SeverityHigh
	case "critical":
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityModerate:
		return "moderate"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}
