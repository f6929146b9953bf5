package ast

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Validation messages reported by Table.Errors.
const (
	msgTableNameRequired = "table name is required"
	msgFieldNameRequired = "field name is required"
	msgTableNeedsField   = "table must have at least one field"
	msgKeyNeedsField     = "key must have at least one field"
	msgIndexNeedsField   = "index must have at least one field"
	msgFKNeedsRefTable   = "foreign key must reference a table"
	msgFKFieldCountMatch = "foreign key field count must match referenced field count"
)

// -----------------------------------------------------------------------------
// Field
// -----------------------------------------------------------------------------

// Field is a single column of a table.
type Field struct {
	Name     string
	Type     FieldType
	Length   string // empty when unbounded
	Decimals string // empty when absent
	NotNull  bool
	Sequence bool
	Default  *string // nil when the field has no default
	Comment  string
}

// NewField builds a field from a precision string such as "10" or "10,5".
func NewField(name string, typ FieldType, precision string, notNull, sequence bool) *Field {
	length, decimals := SplitPrecision(precision)
	return &Field{
		Name:     name,
		Type:     typ,
		Length:   length,
		Decimals: decimals,
		NotNull:  notNull,
		Sequence: sequence,
	}
}

// SplitPrecision splits "L" or "L,D" into its parts. Whitespace is ignored.
func SplitPrecision(precision string) (length, decimals string) {
	precision = strings.TrimSpace(precision)
	if precision == "" {
		return "", ""
	}
	length, decimals, _ = strings.Cut(precision, ",")
	return strings.TrimSpace(length), strings.TrimSpace(decimals)
}

// Precision renders the human precision text: "(10)" or "(10, 5)".
func (f *Field) Precision() string {
	s := "(" + f.Length
	if f.Decimals != "" && f.Decimals != "0" {
		s += ", " + f.Decimals
	}
	return s + ")"
}

// DefaultValue returns the default and whether one is set.
func (f *Field) DefaultValue() (string, bool) {
	if f.Default == nil {
		return "", false
	}
	return *f.Default, true
}

// SetDefault sets the default value.
func (f *Field) SetDefault(v string) {
	f.Default = &v
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	c := *f
	if f.Default != nil {
		d := *f.Default
		c.Default = &d
	}
	return &c
}

// problems returns validation problems for the field alone.
func (f *Field) problems() []string {
	var out []string
	if f.Name == "" {
		return []string{msgFieldNameRequired}
	}
	if f.Type == TypeIncorrect {
		out = append(out, fmt.Sprintf("field %q has an incorrect type", f.Name))
	}
	if f.Type == TypeChar && f.Length == "" {
		out = append(out, fmt.Sprintf("char field %q requires a length", f.Name))
	}
	if f.Length != "" {
		if n, err := strconv.Atoi(f.Length); err != nil || n <= 0 {
			out = append(out, fmt.Sprintf("field %q has invalid length %q", f.Name, f.Length))
		}
	}
	if f.Decimals != "" {
		d, err := strconv.Atoi(f.Decimals)
		n, _ := strconv.Atoi(f.Length)
		if err != nil || d < 0 || d > n {
			out = append(out, fmt.Sprintf("field %q has invalid decimals %q", f.Name, f.Decimals))
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Key and Index
// -----------------------------------------------------------------------------

// Key is a primary, unique or foreign key over one or more fields.
// RefFields is positionally paired with Fields for foreign kinds.
type Key struct {
	Name      string
	Type      KeyType
	Fields    []string
	RefTable  string
	RefFields []string
}

// Clone returns a deep copy of the key.
func (k *Key) Clone() *Key {
	c := *k
	c.Fields = slices.Clone(k.Fields)
	c.RefFields = slices.Clone(k.RefFields)
	return &c
}

// Index is a non-constraining index over one or more fields.
type Index struct {
	Name   string
	Unique bool
	Fields []string
}

// Clone returns a deep copy of the index.
func (i *Index) Clone() *Index {
	c := *i
	c.Fields = slices.Clone(i.Fields)
	return &c
}

// PHPConst returns XMLDB_INDEX_UNIQUE or XMLDB_INDEX_NOTUNIQUE.
func (i *Index) PHPConst() string {
	if i.Unique {
		return "XMLDB_INDEX_UNIQUE"
	}
	return "XMLDB_INDEX_NOTUNIQUE"
}

// -----------------------------------------------------------------------------
// Table
// -----------------------------------------------------------------------------

// Table is one XMLDB table. Fields keep declaration order; keys and indexes
// keep first-seen order with the primary key first.
type Table struct {
	Name    string
	Comment string
	Fields  []*Field
	Keys    []*Key
	Indexes []*Index

	errs []string // problems recorded while loading
}

// NewTable creates an empty table.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// Field returns the named field or nil.
func (t *Table) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Key returns the named key or nil.
func (t *Table) Key(name string) *Key {
	for _, k := range t.Keys {
		if k.Name == name {
			return k
		}
	}
	return nil
}

// Index returns the named index or nil.
func (t *Table) Index(name string) *Index {
	for _, i := range t.Indexes {
		if i.Name == name {
			return i
		}
	}
	return nil
}

// FieldNames returns field names in table order.
func (t *Table) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// Previous returns the name of the field declared just before name, or "".
func (t *Table) Previous(name string) string {
	for i, f := range t.Fields {
		if f.Name == name {
			if i == 0 {
				return ""
			}
			return t.Fields[i-1].Name
		}
	}
	return ""
}

// AddError records a problem found while building or loading the table.
func (t *Table) AddError(format string, args ...any) {
	t.errs = append(t.errs, fmt.Sprintf(format, args...))
}

// Errors returns every recorded and structural problem of the table.
// An empty result means the table is valid.
func (t *Table) Errors() []string {
	out := slices.Clone(t.errs)
	if t.Name == "" {
		out = append(out, msgTableNameRequired)
	}
	if len(t.Fields) == 0 {
		out = append(out, msgTableNeedsField)
	}

	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if seen[f.Name] {
			out = append(out, fmt.Sprintf("duplicate field %q", f.Name))
		}
		seen[f.Name] = true
		out = append(out, f.problems()...)
	}

	keyNames := make(map[string]bool, len(t.Keys))
	for _, k := range t.Keys {
		if keyNames[k.Name] {
			out = append(out, fmt.Sprintf("duplicate key %q", k.Name))
		}
		keyNames[k.Name] = true
		out = append(out, t.memberProblems("key", k.Name, k.Fields, msgKeyNeedsField)...)
		if k.Type == KeyIncorrect {
			out = append(out, fmt.Sprintf("key %q has an incorrect type", k.Name))
		}
		if k.Type.IsForeign() {
			if k.RefTable == "" {
				out = append(out, fmt.Sprintf("key %q: %s", k.Name, msgFKNeedsRefTable))
			}
			if len(k.RefFields) != len(k.Fields) {
				out = append(out, fmt.Sprintf("key %q: %s", k.Name, msgFKFieldCountMatch))
			}
		}
	}
	indexNames := make(map[string]bool, len(t.Indexes))
	for _, i := range t.Indexes {
		if indexNames[i.Name] {
			out = append(out, fmt.Sprintf("duplicate index %q", i.Name))
		}
		indexNames[i.Name] = true
		out = append(out, t.memberProblems("index", i.Name, i.Fields, msgIndexNeedsField)...)
	}
	return out
}

// Valid reports whether the table has no problems.
func (t *Table) Valid() bool {
	return len(t.Errors()) == 0
}

func (t *Table) memberProblems(kind, name string, fields []string, empty string) []string {
	if len(fields) == 0 {
		return []string{fmt.Sprintf("%s %q: %s", kind, name, empty)}
	}
	var out []string
	for _, f := range fields {
		if t.Field(f) == nil {
			out = append(out, fmt.Sprintf("%s %q references unknown field %q", kind, name, f))
		}
	}
	return out
}

// Clone returns a deep copy of the table, recorded errors included.
func (t *Table) Clone() *Table {
	c := &Table{Name: t.Name, Comment: t.Comment, errs: slices.Clone(t.errs)}
	for _, f := range t.Fields {
		c.Fields = append(c.Fields, f.Clone())
	}
	for _, k := range t.Keys {
		c.Keys = append(c.Keys, k.Clone())
	}
	for _, i := range t.Indexes {
		c.Indexes = append(c.Indexes, i.Clone())
	}
	return c
}

// -----------------------------------------------------------------------------
// Structure
// -----------------------------------------------------------------------------

// Structure is the content of one install.xml file.
type Structure struct {
	Path    string // e.g. "local/example/db"
	Version int64
	Comment string
	Tables  []*Table
}

// Table returns the named table or nil.
func (s *Structure) Table(name string) *Table {
	if s == nil {
		return nil
	}
	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// TableNames returns the table names in structure order.
func (s *Structure) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// AddTable appends a table, replacing an existing table of the same name in place.
func (s *Structure) AddTable(t *Table) {
	for i, existing := range s.Tables {
		if existing.Name == t.Name {
			s.Tables[i] = t
			return
		}
	}
	s.Tables = append(s.Tables, t)
}
