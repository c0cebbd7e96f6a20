// Package db manages the process-wide DuckDB handle used for dataset
// attribute analytics. The database is optional: when it cannot be
// opened the rest of the service keeps running and the endpoints that
// need it report unavailable.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	mu       sync.Mutex
	instance *sql.DB
)

// Config holds database configuration. Path, when set, overrides the
// derived <DataDir>/duckdb/<Name>.duckdb location.
type Config struct {
	DataDir string
	Name    string
	Path    string
}

// Get returns the shared DuckDB connection, opening it on first use.
func Get(cfg Config) (*sql.DB, error) {
	mu.Lock()
	defer mu.Unlock()
	if instance != nil {
		return instance, nil
	}

	dbPath := cfg.Path
	if dbPath == "" {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0o755); err != nil {
			return nil, fmt.Errorf("create duckdb directory: %w", err)
		}
		dbPath = filepath.Join(duckdbDir, cfg.Name+".duckdb")
	}
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, err
	}

	// Extensions may be preinstalled or unavailable offline; either
	// way the attribute tables work without them.
	for _, ext := range []string{"json"} {
		if _, err := db.Exec(fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
			continue
		}
	}

	instance = db
	return instance, nil
}

// Close closes the shared connection; a later Get reopens it.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		return nil
	}
	err := instance.Close()
	instance = nil
	return err
}
