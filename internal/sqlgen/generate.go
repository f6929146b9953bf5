package sqlgen

import (
	"strings"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
	"github.com/hlop3z/swan/internal/dialect"
)

// DefaultPrefix is the table prefix of a stock Moodle install.
const DefaultPrefix = "mdl_"

// Options controls DDL generation.
type Options struct {
	Dialect string // postgres or sqlite
	Prefix  string // prepended to every table name
}

// Generate returns one CREATE TABLE statement per table of s, each followed
// by the CREATE INDEX statements of its non-primary keys and indexes.
//
// Keys become indexes as Moodle installs them: unique kinds become unique
// indexes, plain foreign keys become non-unique indexes, and no foreign key
// constraint is created.
func Generate(s *ast.Structure, opts Options) ([]string, error) {
	d := dialect.Get(opts.Dialect)
	if d == nil {
		return nil, alerr.Newf(alerr.ErrConfigInvalid, "unsupported dialect %q", opts.Dialect).
			WithHelp(alerr.SuggestSimilar(opts.Dialect, dialect.Names()))
	}

	var stmts []string
	for _, t := range s.Tables {
		if problems := t.Errors(); len(problems) > 0 {
			return nil, alerr.NewInvalidDefinitionError(t.Name, problems)
		}
		stmts = append(stmts, CreateTable(d, opts.Prefix, t))
		stmts = append(stmts, CreateIndexes(d, opts.Prefix, t)...)
	}
	return stmts, nil
}

// CreateTable renders the CREATE TABLE statement of t.
func CreateTable(d dialect.Dialect, prefix string, t *ast.Table) string {
	b := New(d)
	b.CreateTable(prefix + t.Name).Raw(" (\n")

	var defs []string
	inlinePK := false
	for _, f := range t.Fields {
		defs = append(defs, "    "+columnDef(d, f))
		if f.Sequence && d.InlinePrimaryKey() {
			inlinePK = true
		}
	}
	for _, k := range t.Keys {
		if k.Type == ast.KeyPrimary && !inlinePK {
			defs = append(defs, "    "+New(d).PrimaryKey(k.Fields...).String())
		}
	}

	b.Raw(strings.Join(defs, ",\n"))
	b.Raw("\n)")
	return b.String()
}

func columnDef(d dialect.Dialect, f *ast.Field) string {
	b := New(d)
	if f.Sequence {
		return b.Column(f.Name, d.SequenceColumn(f)).String()
	}
	b.Column(f.Name, d.ColumnType(f))
	if f.NotNull {
		b.NotNull()
	}
	if _, ok := f.DefaultValue(); ok {
		b.Default(dialect.DefaultLiteral(d, f))
	}
	return b.String()
}

// CreateIndexes renders the CREATE INDEX statements of t's keys and indexes.
// Keys and indexes over the same fields and uniqueness share one index.
func CreateIndexes(d dialect.Dialect, prefix string, t *ast.Table) []string {
	var stmts []string
	seen := make(map[string]bool)
	add := func(fields []string, unique bool) {
		name := IndexName(prefix, t.Name, fields, unique)
		if seen[name] {
			return
		}
		seen[name] = true
		stmts = append(stmts, New(d).CreateIndex(name, prefix+t.Name, unique, fields...).String())
	}

	for _, k := range t.Keys {
		if k.Type == ast.KeyPrimary {
			continue
		}
		add(k.Fields, k.Type == ast.KeyUnique || k.Type == ast.KeyForeignUnique)
	}
	for _, i := range t.Indexes {
		add(i.Fields, i.Unique)
	}
	return stmts
}

// IndexName builds a Moodle style index name: prefix, table, fields and a
// "uix" or "ix" suffix joined by underscores.
func IndexName(prefix, table string, fields []string, unique bool) string {
	suffix := "ix"
	if unique {
		suffix = "uix"
	}
	parts := append([]string{prefix + table}, fields...)
	return strings.Join(append(parts, suffix), "_")
}
