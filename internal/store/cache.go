// Package store provides a SQLite-backed cache for parsed call report records.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/dupont/internal/callreport"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotCached is returned by LoadRecordSet for untracked paths.
var ErrNotCached = errors.New("store: file not cached")

// Cache provides SQLite-backed record caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version != schemaVersion {
		if _, err := db.Exec(dropSQL); err != nil {
			return fmt.Errorf("dropping stale schema: %w", err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("writing schema version: %w", err)
	}
	return nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// Matches reports whether the tracked stat still describes info.
func (fi FileInfo) Matches(info os.FileInfo) bool {
	return fi.MtimeNs == info.ModTime().UnixNano() && fi.SizeBytes == info.Size()
}

// GetTrackedFiles returns a map of path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveRecordSet replaces the cached rows for rs.Path and its tracking info.
func (c *Cache) SaveRecordSet(rs *callreport.RecordSet, mtimeNs, sizeBytes int64) error {
	if rs.Path == "" {
		return errors.New("store: record set has no path")
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO file_tracker (path, mtime_ns, size_bytes, record_count, skipped, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime_ns = excluded.mtime_ns,
			size_bytes = excluded.size_bytes,
			record_count = excluded.record_count,
			skipped = excluded.skipped,
			parsed_at = excluded.parsed_at`,
		rs.Path, mtimeNs, sizeBytes, rs.Len(), rs.Skipped(), now)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM records WHERE path = ?", rs.Path); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM call_dates WHERE path = ?", rs.Path); err != nil {
		return err
	}

	recStmt, err := tx.Prepare("INSERT INTO records (path, seq, label, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = recStmt.Close() }()
	for i, r := range rs.Records() {
		if _, err := recStmt.Exec(rs.Path, i, r.Label, r.Value); err != nil {
			return err
		}
	}

	dateStmt, err := tx.Prepare("INSERT INTO call_dates (path, seq, call_date) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = dateStmt.Close() }()
	for i, d := range rs.CallDates() {
		if _, err := dateStmt.Exec(rs.Path, i, d); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadRecordSet rebuilds the record set cached for path, in file order.
func (c *Cache) LoadRecordSet(path string) (*callreport.RecordSet, error) {
	var count, skipped int
	err := c.db.QueryRow("SELECT record_count, skipped FROM file_tracker WHERE path = ?", path).Scan(&count, &skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, path)
	}
	if err != nil {
		return nil, err
	}

	records := make([]callreport.Record, 0, count)
	rows, err := c.db.Query("SELECT label, value FROM records WHERE path = ? ORDER BY seq", path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var r callreport.Record
		if err := rows.Scan(&r.Label, &r.Value); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dateRows, err := c.db.Query("SELECT call_date FROM call_dates WHERE path = ? ORDER BY seq", path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = dateRows.Close() }()
	var dates []string
	for dateRows.Next() {
		var d string
		if err := dateRows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := dateRows.Err(); err != nil {
		return nil, err
	}

	return callreport.New(path, records, dates).WithSkipped(skipped), nil
}

// DeleteFile removes a file's cached rows and tracking entry.
func (c *Cache) DeleteFile(path string) error {
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE path = ?", path)
	return err
}

// FileCount returns the number of cached files.
func (c *Cache) FileCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM file_tracker").Scan(&count)
	return count, err
}
