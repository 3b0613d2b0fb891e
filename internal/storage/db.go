// Package storage persists per-file extraction results in a SQLite database
// under the workspace state directory, keyed by (path, source hash). A scan
// re-extracts only files whose content changed; everything else is decoded
// from the cache. Payloads are zstd-compressed JSON.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"scalpel/internal/logging"
)

// DBFileName is the cache database file inside the state directory.
const DBFileName = "cache.db"

// DB wraps the SQLite connection behind the extraction cache.
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

const schema = `
CREATE TABLE IF NOT EXISTS extraction_cache (
	path        TEXT    NOT NULL,
	source_hash TEXT    NOT NULL,
	payload     BLOB    NOT NULL,
	created_at  INTEGER NOT NULL,
	PRIMARY KEY (path, source_hash)
);
CREATE INDEX IF NOT EXISTS idx_extraction_cache_path ON extraction_cache(path);
`

// Open opens or creates the cache database inside stateDir.
func Open(stateDir string, logger *logging.Logger) (*DB, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	dbPath := filepath.Join(stateDir, DBFileName)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL", // Balance between safety and performance
		"PRAGMA busy_timeout=5000",  // Wait up to 5 seconds on lock
		"PRAGMA temp_store=MEMORY",  // Use memory for temp tables
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("cache database ready", map[string]interface{}{"path": dbPath})
	return &DB{conn: conn, logger: logger, dbPath: dbPath}, nil
}

// Path returns the database file location.
func (db *DB) Path() string { return db.dbPath }

// Close closes the underlying connection.
func (db *DB) Close() error { return db.conn.Close() }
