// Package dialect maps XMLDB fields onto the column types and literal
// syntax of the databases the DDL preview supports.
package dialect

import (
	"strconv"

	"github.com/hlop3z/swan/internal/ast"
)

// Dialect defines the database-specific parts of DDL generation.
type Dialect interface {
	// Name returns the dialect name (postgres, sqlite).
	Name() string

	// ColumnType returns the column type of a non-sequence field.
	// PostgreSQL: BIGINT, VARCHAR(255), NUMERIC(10,5), ...
	// SQLite: INTEGER, VARCHAR(255), NUMERIC(10,5), ...
	ColumnType(f *ast.Field) string

	// SequenceColumn returns the full definition, without the column name,
	// of an auto-incrementing field.
	// PostgreSQL: BIGSERIAL
	// SQLite: INTEGER PRIMARY KEY AUTOINCREMENT
	SequenceColumn(f *ast.Field) string

	// InlinePrimaryKey reports whether SequenceColumn already declares the
	// primary key, so the table must not declare it again.
	InlinePrimaryKey() bool

	// QuoteIdent quotes a table, column or index name.
	QuoteIdent(name string) string

	// QuoteLiteral quotes a string literal.
	QuoteLiteral(s string) string
}

// Get returns the dialect implementation for the given name.
// Valid names: "postgres", "postgresql", "sqlite", "sqlite3".
// Returns nil if the dialect is not supported.
func Get(name string) Dialect {
	switch name {
	case "postgres", "postgresql":
		return Postgres()
	case "sqlite", "sqlite3":
		return SQLite()
	default:
		return nil
	}
}

// Names returns the list of supported dialect names.
func Names() []string {
	return []string{"postgres", "sqlite"}
}

// DefaultLiteral renders the DEFAULT value of f. Numeric fields keep
// numeric defaults bare; everything else is quoted.
func DefaultLiteral(d Dialect, f *ast.Field) string {
	v, _ := f.DefaultValue()
	switch f.Type {
	case ast.TypeInteger, ast.TypeNumber, ast.TypeFloat:
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return v
		}
	}
	return d.QuoteLiteral(v)
}

// length returns the field length, or def when unset or not a number.
func length(f *ast.Field, def int) int {
	n, err := strconv.Atoi(f.Length)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// decimals returns the field decimals, 0 when unset.
func decimals(f *ast.Field) int {
	n, err := strconv.Atoi(f.Decimals)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
