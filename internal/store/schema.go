package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS imports (
    import_id            TEXT PRIMARY KEY,
    file_path            TEXT NOT NULL UNIQUE,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    record_count         INTEGER NOT NULL,
    imported_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
    import_id            TEXT NOT NULL REFERENCES imports(import_id) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    timestamp            TEXT NOT NULL,
    user                 TEXT NOT NULL,
    model                TEXT NOT NULL,
    requests_used        REAL NOT NULL,
    exceeds_quota        INTEGER NOT NULL DEFAULT 0,
    total_monthly_quota  TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (import_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_records_user ON records(user);
CREATE INDEX IF NOT EXISTS idx_records_model ON records(model);
`
