// Package derive turns persistent entities into XMLDB table definitions.
//
// Every table starts with four implicit fields (id, usermodified,
// timecreated, timemodified) that entity properties never override, followed
// by one field per remaining property in declaration order. Keys and indexes
// are merged from the per-property declarations, see BuildKeys.
package derive

import (
	"slices"
	"strings"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
	"github.com/hlop3z/swan/internal/component"
	"github.com/hlop3z/swan/internal/entity"
	"github.com/hlop3z/swan/internal/typemap"
)

// ImplicitFields names the fields every derived table starts with.
var ImplicitFields = []string{"id", "usermodified", "timecreated", "timemodified"}

func implicitFields() []*ast.Field {
	return []*ast.Field{
		ast.NewField("id", ast.TypeInteger, "10", true, true),
		ast.NewField("usermodified", ast.TypeInteger, "10", true, false),
		ast.NewField("timecreated", ast.TypeInteger, "10", true, false),
		ast.NewField("timemodified", ast.TypeInteger, "10", true, false),
	}
}

// Fields returns the fields of an entity's table: the implicit fields
// followed by one field per property not named like an implicit field.
func Fields(e *entity.Entity) ([]*ast.Field, error) {
	fields := implicitFields()
	for _, p := range e.Properties {
		if slices.Contains(ImplicitFields, p.Name) {
			continue
		}
		f, err := Field(p)
		if err != nil {
			if ae, ok := err.(*alerr.Error); ok {
				ae.WithEntity(e.Name).WithTable(e.Table)
			}
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Field builds the field of one property. Explicit dbtype and precision
// win over the values inferred from the logical type.
func Field(p entity.Property) (*ast.Field, error) {
	var ft ast.FieldType
	if p.DBType != "" {
		t, ok := ast.ParseFieldType(p.DBType)
		if !ok {
			return nil, alerr.Newf(alerr.ErrUnmappableType, "unknown dbtype %q", p.DBType).WithField(p.Name)
		}
		ft = t
	} else {
		t, err := typemap.ColumnType(p.Name, p.Type)
		if err != nil {
			return nil, err
		}
		ft = t
	}

	precision := p.Precision
	if precision == "" {
		precision, _ = typemap.Precision(p.Type, ft)
	}

	f := ast.NewField(p.Name, ft, precision, !p.Null, p.Sequence)
	if p.Default.IsLiteral() {
		if v, ok := typemap.Clean(typemap.CleanRuleFor(ft), p.Default.Value()); ok {
			f.SetDefault(v)
		}
	}
	f.Comment = p.Comment
	return f, nil
}

// DeriveTable builds the complete table definition of an entity.
func DeriveTable(e *entity.Entity) (*ast.Table, error) {
	fields, err := Fields(e)
	if err != nil {
		return nil, err
	}
	keys, err := BuildKeys(e.Properties)
	if err != nil {
		return nil, err.(*alerr.Error).WithEntity(e.Name).WithTable(e.Table)
	}
	indexes, err := BuildIndexes(e.Properties)
	if err != nil {
		return nil, err.(*alerr.Error).WithEntity(e.Name).WithTable(e.Table)
	}

	t := ast.NewTable(e.Table)
	t.Fields = fields
	t.Keys = keys
	t.Indexes = indexes
	t.Comment = Comment(e)
	return t, nil
}

// Comment returns the table comment of an entity: the first line of its
// documentation, or the placeholder the XMLDB editor uses.
func Comment(e *entity.Entity) string {
	if s, ok := CommentSummary(e.Doc); ok {
		return s
	}
	return DefaultComment(e.Table)
}

// DefaultComment is the comment of a table whose entity is undocumented.
func DefaultComment(table string) string {
	return "Default comment for " + table + ", please edit me"
}

// StructureOptions describes the install.xml a structure is derived for.
type StructureOptions struct {
	Component string // frankenstyle name, e.g. local_example
	Dir       string // plugin directory relative to the Moodle root
	Version   int64
	Namespace string // when set, only entities of exactly this namespace are used
}

// DeriveStructure derives the structure of a component from its entities.
// Abstract entities and entities outside the namespace filter are skipped.
func DeriveStructure(opts StructureOptions, entities []*entity.Entity) (*ast.Structure, error) {
	typ, name := component.Normalize(opts.Component)
	s := &ast.Structure{
		Path:    strings.TrimSuffix(opts.Dir, "/") + "/db",
		Version: opts.Version,
		Comment: "XMLDB file for " + typ + "/" + name,
	}

	ns := strings.Trim(opts.Namespace, `\`)
	for _, e := range entities {
		if ns != "" && strings.Trim(e.Namespace, `\`) != ns {
			continue
		}
		if e.Abstract {
			continue
		}
		if s.Table(e.Table) != nil {
			return nil, alerr.Newf(alerr.ErrInvalidEntity, "table %q is declared by more than one entity", e.Table).
				WithEntity(e.Name).
				WithFile(e.Source, 0)
		}
		t, err := DeriveTable(e)
		if err != nil {
			return nil, err
		}
		s.Tables = append(s.Tables, t)
	}
	return s, nil
}
