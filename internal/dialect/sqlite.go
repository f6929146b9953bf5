package dialect

import (
	"fmt"
	"strings"

	"github.com/hlop3z/swan/internal/ast"
)

// sqlite implements the Dialect interface for SQLite.
type sqlite struct{}

// SQLite returns the SQLite dialect implementation.
func SQLite() Dialect {
	return &sqlite{}
}

func (d *sqlite) Name() string {
	return "sqlite"
}

// -----------------------------------------------------------------------------
// Type mappings
// SQLite only knows the affinities INTEGER, REAL, NUMERIC, TEXT and BLOB; the
// declared lengths are kept so the DDL reads like the other dialects.
// -----------------------------------------------------------------------------

func (d *sqlite) ColumnType(f *ast.Field) string {
	switch f.Type {
	case ast.TypeInteger:
		return fmt.Sprintf("INTEGER(%d)", length(f, 10))
	case ast.TypeNumber:
		return fmt.Sprintf("NUMERIC(%d,%d)", length(f, 10), decimals(f))
	case ast.TypeFloat:
		return "REAL"
	case ast.TypeChar:
		return fmt.Sprintf("VARCHAR(%d)", length(f, 255))
	case ast.TypeBinary:
		return "BLOB"
	default:
		return "TEXT"
	}
}

func (d *sqlite) SequenceColumn(f *ast.Field) string {
	// AUTOINCREMENT is only accepted on an INTEGER PRIMARY KEY column.
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (d *sqlite) InlinePrimaryKey() bool {
	return true
}

// -----------------------------------------------------------------------------
// Quoting
// -----------------------------------------------------------------------------

func (d *sqlite) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *sqlite) QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
