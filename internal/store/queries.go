package store

import (
	"fmt"
	"time"
)

// InsertRun records one completed audit run and its findings. Returns the
// new run's id.
func (s *Store) InsertRun(run *AuditRun, findings []Finding) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO audit_runs
		(started_at, package_count, total, low, moderate, high, critical, unknown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.Format(time.RFC3339),
		run.PackageCount,
		run.Total,
		run.Low,
		run.Moderate,
		run.High,
		run.Critical,
		run.Unknown,
	)
	if err != nil {
		return 0, wrapSchemaErr(fmt.Errorf("failed to insert audit run: %w", err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, f := range findings {
		_, err := tx.Exec(`
			INSERT INTO findings (run_id, package, severity, cve_id, details)
			VALUES (?, ?, ?, ?, ?)`,
			id, f.Package, f.Severity, f.CVEID, f.Details,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert finding %s: %w", f.CVEID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit audit run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent audit runs, newest first, up to limit.
func (s *Store) ListRuns(limit int) ([]*AuditRun, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, package_count, total, low, moderate, high, critical, unknown
		FROM audit_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, wrapSchemaErr(fmt.Errorf("failed to list audit runs: %w", err))
	}
	defer rows.Close()

	var runs []*AuditRun
	for rows.Next() {
		var run AuditRun
		var startedAt string
		if err := rows.Scan(
			&run.ID,
			&startedAt,
			&run.PackageCount,
			&run.Total,
			&run.Low,
			&run.Moderate,
			&run.High,
			&run.Critical,
			&run.Unknown,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit run: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at for run %d: %w", run.ID, err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// RunFindings returns the findings recorded for one audit run, in insert
// order (inventory enumeration order, then feed-list order).
func (s *Store) RunFindings(runID int64) ([]Finding, error) {
	rows, err := s.db.Query(`
		SELECT run_id, package, severity, cve_id, details
		FROM findings
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, wrapSchemaErr(fmt.Errorf("failed to list findings: %w", err))
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.RunID, &f.Package, &f.Severity, &f.CVEID, &f.Details); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}
