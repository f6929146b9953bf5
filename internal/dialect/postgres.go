package dialect

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/hlop3z/swan/internal/ast"
)

// postgres implements the Dialect interface for PostgreSQL.
type postgres struct{}

// Postgres returns the PostgreSQL dialect implementation.
func Postgres() Dialect {
	return &postgres{}
}

func (d *postgres) Name() string {
	return "postgres"
}

// -----------------------------------------------------------------------------
// Type mappings
// -----------------------------------------------------------------------------

func (d *postgres) ColumnType(f *ast.Field) string {
	switch f.Type {
	case ast.TypeInteger:
		switch n := length(f, 10); {
		case n <= 4:
			return "SMALLINT"
		case n <= 9:
			return "INTEGER"
		default:
			return "BIGINT"
		}
	case ast.TypeNumber:
		return fmt.Sprintf("NUMERIC(%d,%d)", length(f, 10), decimals(f))
	case ast.TypeFloat:
		return "DOUBLE PRECISION"
	case ast.TypeChar:
		return fmt.Sprintf("VARCHAR(%d)", length(f, 255))
	case ast.TypeBinary:
		return "BYTEA"
	case ast.TypeDatetime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func (d *postgres) SequenceColumn(f *ast.Field) string {
	return "BIGSERIAL"
}

func (d *postgres) InlinePrimaryKey() bool {
	return false
}

// -----------------------------------------------------------------------------
// Quoting
// -----------------------------------------------------------------------------

func (d *postgres) QuoteIdent(name string) string {
	return pq.QuoteIdentifier(name)
}

func (d *postgres) QuoteLiteral(s string) string {
	return pq.QuoteLiteral(s)
}
