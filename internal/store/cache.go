// Package store provides a SQLite-backed cache of parsed usage records.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/cusage/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed record caching keyed by source file.
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

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked state of one imported file.
type FileInfo struct {
	ImportID    string
	MtimeNs     int64
	SizeBytes   int64
	RecordCount int
	ImportedAt  time.Time
}

// Matches reports whether the file on disk is unchanged since import.
func (fi FileInfo) Matches(mtimeNs, sizeBytes int64) bool {
	return fi.MtimeNs == mtimeNs && fi.SizeBytes == sizeBytes
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all imported files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, import_id, mtime_ns, size_bytes, record_count, imported_at FROM imports")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path, importedAt string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.ImportID, &fi.MtimeNs, &fi.SizeBytes, &fi.RecordCount, &importedAt); err != nil {
			return nil, err
		}
		fi.ImportedAt, _ = time.Parse(time.RFC3339, importedAt)
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces the cached records of one file under a fresh import id.
func (c *Cache) SaveFile(path string, mtimeNs, sizeBytes int64, records []model.UsageRecord) (string, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	// Cascades to the previous import's records.
	if _, err := tx.Exec("DELETE FROM imports WHERE file_path = ?", path); err != nil {
		return "", err
	}

	importID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO imports
		(import_id, file_path, mtime_ns, size_bytes, record_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		importID, path, mtimeNs, sizeBytes, len(records), now,
	)
	if err != nil {
		return "", err
	}

	stmt, err := tx.Prepare(`INSERT INTO records
		(import_id, seq, timestamp, user, model, requests_used, exceeds_quota, total_monthly_quota)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		exceeds := 0
		if r.ExceedsQuota {
			exceeds = 1
		}
		_, err = stmt.Exec(importID, i, r.Timestamp.UTC().Format(time.RFC3339Nano),
			r.User, r.Model, r.RequestsUsed, exceeds, r.TotalMonthlyQuota)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return importID, nil
}

// ErrNotCached is returned by LoadFile for a path with no import.
var ErrNotCached = errors.New("file not cached")

// LoadFile reads the cached records of one file in their original order.
func (c *Cache) LoadFile(path string) ([]model.UsageRecord, error) {
	var importID string
	err := c.db.QueryRow("SELECT import_id FROM imports WHERE file_path = ?", path).Scan(&importID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, err
	}

	rows, err := c.db.Query(`SELECT
		timestamp, user, model, requests_used, exceeds_quota, total_monthly_quota
		FROM records WHERE import_id = ? ORDER BY seq`, importID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []model.UsageRecord
	for rows.Next() {
		var r model.UsageRecord
		var ts string
		var exceeds int
		if err := rows.Scan(&ts, &r.User, &r.Model, &r.RequestsUsed, &exceeds, &r.TotalMonthlyQuota); err != nil {
			return nil, err
		}
		r.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("cached timestamp %q: %w", ts, err)
		}
		r.ExceedsQuota = exceeds != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteFile removes a file's import and its records.
func (c *Cache) DeleteFile(path string) error {
	_, err := c.db.Exec("DELETE FROM imports WHERE file_path = ?", path)
	return err
}

// RecordCount returns the number of cached records.
func (c *Cache) RecordCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}
