package store

import "time"

// AuditRun is one recorded audit invocation with its aggregated counts.
type AuditRun struct {
	ID           int64
	StartedAt    time.Time
	PackageCount int
	Total        int
	Low          int
	Moderate     int
	High         int
	Critical     int
	Unknown      int
}

// Finding is one matched vulnerability recorded against an audit run.
type Finding struct {
	RunID    int64
	Package  string
	Severity string
	CVEID    string
	Details  string
}
