package store

// schemaVersion is stored in PRAGMA user_version. A cache written under any
// other version is dropped and rebuilt on open.
const schemaVersion = 2

const dropSQL = `
DROP TABLE IF EXISTS call_dates;
DROP TABLE IF EXISTS records;
DROP TABLE IF EXISTS file_tracker;
`

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    path                 TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    record_count         INTEGER NOT NULL DEFAULT 0,
    skipped              INTEGER NOT NULL DEFAULT 0,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
    path                 TEXT NOT NULL REFERENCES file_tracker(path) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    label                TEXT NOT NULL,
    value                TEXT NOT NULL,
    PRIMARY KEY (path, seq)
);

CREATE TABLE IF NOT EXISTS call_dates (
    path                 TEXT NOT NULL REFERENCES file_tracker(path) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    call_date            TEXT NOT NULL,
    PRIMARY KEY (path, seq)
);

CREATE INDEX IF NOT EXISTS idx_records_label ON records(label);
`
