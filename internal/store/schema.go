package store

const schema = `
CREATE TABLE IF NOT EXISTS audit_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP NOT NULL,
    package_count INTEGER NOT NULL,
    total INTEGER NOT NULL,
    low INTEGER NOT NULL,
    moderate INTEGER NOT NULL,
    high INTEGER NOT NULL,
    critical INTEGER NOT NULL,
    unknown INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS findings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    package TEXT NOT NULL,
    severity TEXT NOT NULL,
    cve_id TEXT NOT NULL,
    details TEXT,
    FOREIGN KEY (run_id) REFERENCES audit_runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
CREATE INDEX IF NOT EXISTS idx_findings_package ON findings(package);
CREATE INDEX IF NOT EXISTS idx_runs_started ON audit_runs(started_at);
`
