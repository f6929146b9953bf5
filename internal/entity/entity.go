// Package entity describes persistent entities: the declarative model classes
// whose property definitions are turned into XMLDB tables.
//
// Entities are read from YAML or JavaScript definition files and are
// immutable once loaded.
package entity

// Property option names, as written in entity definition files.
const (
	OptType             = "type"
	OptDBType           = "dbtype"
	OptPrecision        = "precision"
	OptNull             = "null"
	OptSequence         = "sequence"
	OptDefault          = "default"
	OptComment          = "comment"
	OptForeignKey       = "foreignkey"
	OptUniqueForeignKey = "uniqueforeignkey"
	OptUniqueKey        = "uniquekey"
	OptIndex            = "index"
	OptUniqueIndex      = "uniqueindex"

	// Accepted for compatibility with persistent definitions, not used by the schema.
	optChoices = "choices"
	optMessage = "message"
)

// PropertyOptions lists every option a property may declare.
var PropertyOptions = []string{
	OptType, OptDBType, OptPrecision, OptNull, OptSequence, OptDefault, OptComment,
	OptForeignKey, OptUniqueForeignKey, OptUniqueKey, OptIndex, OptUniqueIndex,
	optChoices, optMessage,
}

// Entity is one persistent entity.
type Entity struct {
	Name       string // fully-qualified, e.g. local_example\persistent\message
	Namespace  string
	Table      string
	Doc        string // leading documentation, used for the table comment
	Abstract   bool
	Properties []Property
	Source     string // file the entity was loaded from
}

// Property returns the named property and whether it exists.
func (e *Entity) Property(name string) (Property, bool) {
	for _, p := range e.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Property is the statically-typed definition of one entity property.
type Property struct {
	Name      string
	Type      string // logical type: int, bool, float, raw, ...
	DBType    string // explicit column type, empty when inferred
	Precision string // explicit precision ("64", "10,5"), empty when inferred
	Null      bool   // nullable; properties are not null by default
	Sequence  bool
	Default   Default
	Comment   string

	ForeignKey       KeyDecl
	UniqueForeignKey KeyDecl
	UniqueKey        KeyDecl
	Index            KeyDecl
	UniqueIndex      KeyDecl
}

// Decl returns the key or index declaration stored under option.
func (p Property) Decl(option string) KeyDecl {
	switch option {
	case OptForeignKey:
		return p.ForeignKey
	case OptUniqueForeignKey:
		return p.UniqueForeignKey
	case OptUniqueKey:
		return p.UniqueKey
	case OptIndex:
		return p.Index
	case OptUniqueIndex:
		return p.UniqueIndex
	}
	return KeyDecl{}
}

// -----------------------------------------------------------------------------
// Default
// -----------------------------------------------------------------------------

type defaultKind int

const (
	defaultAbsent defaultKind = iota
	defaultLiteral
	defaultDeferred
)

// Default is a property default: absent, a literal value, or a deferred
// marker for defaults computed at runtime, which are never stored in the schema.
type Default struct {
	kind  defaultKind
	value any
}

// Literal returns a literal default. v is a bool, int64, float64 or string.
func Literal(v any) Default {
	return Default{kind: defaultLiteral, value: v}
}

// Deferred returns the marker for a default computed at runtime.
func Deferred() Default {
	return Default{kind: defaultDeferred}
}

// IsSet reports whether any default was declared.
func (d Default) IsSet() bool { return d.kind != defaultAbsent }

// IsLiteral reports whether the default is a literal value.
func (d Default) IsLiteral() bool { return d.kind == defaultLiteral }

// IsDeferred reports whether the default is computed at runtime.
func (d Default) IsDeferred() bool { return d.kind == defaultDeferred }

// Value returns the literal value, or nil.
func (d Default) Value() any { return d.value }

// -----------------------------------------------------------------------------
// KeyDecl
// -----------------------------------------------------------------------------

// KeyEntry is one name/value pair of a mapping declaration.
type KeyEntry struct {
	Name  string
	Value any
}

// KeyDecl is a key or index declaration: absent, a scalar shorthand, or an
// ordered mapping from key name to value.
type KeyDecl struct {
	set     bool
	scalar  any
	entries []KeyEntry
	mapping bool
}

// Scalar returns a shorthand declaration such as 'user.id', 'name' or true.
func Scalar(v any) KeyDecl {
	return KeyDecl{set: true, scalar: v}
}

// Mapping returns a declaration naming one or more keys explicitly.
func Mapping(entries ...KeyEntry) KeyDecl {
	return KeyDecl{set: true, mapping: true, entries: entries}
}

// IsSet reports whether the declaration is present.
func (d KeyDecl) IsSet() bool { return d.set }

// IsMapping reports whether the declaration is a mapping.
func (d KeyDecl) IsMapping() bool { return d.mapping }

// ScalarValue returns the shorthand value.
func (d KeyDecl) ScalarValue() any { return d.scalar }

// Entries returns the mapping entries in declaration order.
func (d KeyDecl) Entries() []KeyEntry { return d.entries }
