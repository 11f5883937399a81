// Package state owns the SQLite database file and its schema.
package state

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "tagdeck"
	dbFileName = "tagdeck.db"
)

type Manager struct {
	db *sql.DB
}

// Open opens the database at path, or at the XDG data location when path is
// empty, creating the schema as needed.
func Open(path string) (*Manager, error) {
	if path == "" {
		var err error
		path, err = getDBPath()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	return open(db)
}

// OpenMemory opens a private in-memory database, used for dry runs and tests.
func OpenMemory() (*Manager, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every pooled connection would otherwise get its own empty database
	db.SetMaxOpenConns(1)
	return open(db)
}

func open(db *sql.DB) (*Manager, error) {
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Manager{db: db}, nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

// SchemaVersion returns the version recorded in the database.
func (m *Manager) SchemaVersion() (int, error) {
	var v int
	err := m.db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v)
	return v, err
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
