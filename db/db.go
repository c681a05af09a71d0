// ABOUTME: SQLite connection management for the ingestion store
// ABOUTME: Resolves the database path and opens it with WAL and the schema applied
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath resolves the database location: CRM_DB_PATH when set, otherwise
// the XDG data directory.
func DefaultPath() string {
	if p := os.Getenv("CRM_DB_PATH"); p != "" {
		return p
	}
	return filepath.Join(xdg.DataHome, "crmflow", "crm.db")
}

// OpenDatabase opens the store at path, creating parent directories and
// applying the schema. WAL plus a single connection keeps concurrent
// ingestion workers from tripping over SQLITE_BUSY.
func OpenDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
