package db

import (
	"database/sql"
)

// Executor is satisfied by *sql.DB and *sql.Tx.
type Executor interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// WithTx executes fn within a transaction.
// It handles Begin, Rollback on error, and Commit on success.
func WithTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// NullInt64Value returns the int64 value or def if not valid.
func NullInt64Value(n sql.NullInt64, def int64) int64 {
	if !n.Valid {
		return def
	}
	return n.Int64
}

// NullStringValue returns the string value or empty string if not valid.
func NullStringValue(n sql.NullString) string {
	if !n.Valid {
		return ""
	}
	return n.String
}

// BoolInt converts a flag to the 0/1 integer SQLite stores.
func BoolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
