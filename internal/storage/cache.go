package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"scalpel/internal/extract"
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Get looks up the cached extraction for path at the given source hash.
// A miss returns (nil, false, nil).
func (db *DB) Get(path, sourceHash string) (*extract.FileEntities, bool, error) {
	var payload []byte
	err := db.conn.QueryRow(
		"SELECT payload FROM extraction_cache WHERE path = ? AND source_hash = ?",
		path, sourceHash,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup for %s: %w", path, err)
	}

	raw, err := zstdDecoder.DecodeAll(payload, nil)
	if err != nil {
		// A corrupt row is treated as a miss; the caller re-extracts and
		// overwrites it.
		db.logger.Warn("dropping corrupt cache row", map[string]interface{}{"path": path})
		return nil, false, nil
	}
	var fe extract.FileEntities
	if err := json.Unmarshal(raw, &fe); err != nil {
		db.logger.Warn("dropping undecodable cache row", map[string]interface{}{"path": path})
		return nil, false, nil
	}
	return &fe, true, nil
}

// Put stores an extraction result and evicts stale rows for the same path.
func (db *DB) Put(fe *extract.FileEntities) error {
	raw, err := json.Marshal(fe)
	if err != nil {
		return fmt.Errorf("cache encode for %s: %w", fe.Path, err)
	}
	payload := zstdEncoder.EncodeAll(raw, nil)

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("cache store for %s: %w", fe.Path, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM extraction_cache WHERE path = ? AND source_hash != ?",
		fe.Path, fe.SourceHash,
	); err != nil {
		return fmt.Errorf("cache evict for %s: %w", fe.Path, err)
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO extraction_cache (path, source_hash, payload, created_at) VALUES (?, ?, ?, ?)",
		fe.Path, fe.SourceHash, payload, time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("cache store for %s: %w", fe.Path, err)
	}
	return tx.Commit()
}

// Purge drops every cached row.
func (db *DB) Purge() error {
	_, err := db.conn.Exec("DELETE FROM extraction_cache")
	return err
}

// Stats reports row count and total payload bytes.
func (db *DB) Stats() (rows int, bytes int64, err error) {
	err = db.conn.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(payload)), 0) FROM extraction_cache",
	).Scan(&rows, &bytes)
	return rows, bytes, err
}
