package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// SetupSQLite creates an in-memory SQLite database for testing.
// The connection is automatically closed when the test completes.
func SetupSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite connection: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping sqlite: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// ExecSQL executes each statement and fails the test on the first error.
func ExecSQL(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()

	for _, query := range stmts {
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("failed to execute SQL:\n%s\nerror: %v", query, err)
		}
	}
}

// AssertTableExists checks that a table exists in the SQLite database.
func AssertTableExists(t *testing.T, db *sql.DB, table string) {
	t.Helper()

	var name string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name = ?
	`, table).Scan(&name)
	if err == sql.ErrNoRows {
		t.Errorf("expected table %q to exist, but it does not", table)
		return
	}
	if err != nil {
		t.Fatalf("failed to check if table exists: %v", err)
	}
}

// Columns returns the column names of a SQLite table in declaration order.
func Columns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("failed to get table info: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("failed to read column info: %v", err)
	}
	return names
}

// AssertColumnExists checks that a column exists in a SQLite table.
func AssertColumnExists(t *testing.T, db *sql.DB, table, column string) {
	t.Helper()

	for _, name := range Columns(t, db, table) {
		if name == column {
			return
		}
	}
	t.Errorf("expected column %q to exist in table %q, but it does not", column, table)
}

// AssertIndexExists checks that an index exists on a SQLite table.
func AssertIndexExists(t *testing.T, db *sql.DB, table, index string) {
	t.Helper()

	var name string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND name = ?
	`, table, index).Scan(&name)
	if err == sql.ErrNoRows {
		t.Errorf("expected index %q to exist on table %q, but it does not", index, table)
		return
	}
	if err != nil {
		t.Fatalf("failed to check if index exists: %v", err)
	}
}
