// Package sqlgen renders an XMLDB structure as CREATE statements for a SQL
// dialect, and checks that the result is accepted by a real database.
package sqlgen

import (
	"strings"

	"github.com/hlop3z/swan/internal/dialect"
)

// Builder provides fluent SQL construction with dialect awareness.
type Builder struct {
	dialect dialect.Dialect
	buf     strings.Builder
}

// New creates a new Builder for the specified dialect.
func New(d dialect.Dialect) *Builder {
	return &Builder{dialect: d}
}

// Dialect returns the dialect of this builder.
func (b *Builder) Dialect() dialect.Dialect {
	return b.dialect
}

// ----------------------------------------------------------------------------
// DDL Helpers
// ----------------------------------------------------------------------------

// CreateTable appends "CREATE TABLE <name>" to the buffer.
func (b *Builder) CreateTable(name string) *Builder {
	b.buf.WriteString("CREATE TABLE ")
	b.buf.WriteString(b.dialect.QuoteIdent(name))
	return b
}

// CreateIndex appends "CREATE [UNIQUE] INDEX <name> ON <table> (<cols>)".
func (b *Builder) CreateIndex(name, table string, unique bool, cols ...string) *Builder {
	b.buf.WriteString("CREATE ")
	if unique {
		b.buf.WriteString("UNIQUE ")
	}
	b.buf.WriteString("INDEX ")
	b.buf.WriteString(b.dialect.QuoteIdent(name))
	b.buf.WriteString(" ON ")
	b.buf.WriteString(b.dialect.QuoteIdent(table))
	b.buf.WriteString(" (")
	b.buf.WriteString(b.Columns(cols...))
	b.buf.WriteString(")")
	return b
}

// Column appends "<name> <typ>" to the buffer.
func (b *Builder) Column(name, typ string) *Builder {
	b.buf.WriteString(b.dialect.QuoteIdent(name))
	b.buf.WriteString(" ")
	b.buf.WriteString(typ)
	return b
}

// ----------------------------------------------------------------------------
// Column Modifiers
// ----------------------------------------------------------------------------

// NotNull appends "NOT NULL" to the buffer.
func (b *Builder) NotNull() *Builder {
	b.buf.WriteString(" NOT NULL")
	return b
}

// Default appends "DEFAULT <expr>" to the buffer.
// The expression is written as-is (not quoted).
func (b *Builder) Default(expr string) *Builder {
	b.buf.WriteString(" DEFAULT ")
	b.buf.WriteString(expr)
	return b
}

// PrimaryKey appends "PRIMARY KEY (<cols>)" to the buffer.
func (b *Builder) PrimaryKey(cols ...string) *Builder {
	b.buf.WriteString("PRIMARY KEY (")
	b.buf.WriteString(b.Columns(cols...))
	b.buf.WriteString(")")
	return b
}

// ----------------------------------------------------------------------------
// Utilities
// ----------------------------------------------------------------------------

// Raw appends raw SQL to the buffer without any modification.
func (b *Builder) Raw(sql string) *Builder {
	b.buf.WriteString(sql)
	return b
}

// Columns returns a comma-separated list of quoted column names.
func (b *Builder) Columns(cols ...string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = b.dialect.QuoteIdent(col)
	}
	return strings.Join(parts, ", ")
}

// String returns the accumulated SQL string.
func (b *Builder) String() string {
	return b.buf.String()
}

// Reset clears the buffer so the builder can be reused.
func (b *Builder) Reset() *Builder {
	b.buf.Reset()
	return b
}
