package derive

import (
	"strings"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
	"github.com/hlop3z/swan/internal/entity"
)

// PrimaryKey is the name of the synthesized primary key on id.
const PrimaryKey = "primary"

// keyKinds lists the key declarations in the order they are scanned.
var keyKinds = []struct {
	option string
	typ    ast.KeyType
}{
	{entity.OptForeignKey, ast.KeyForeign},
	{entity.OptUniqueForeignKey, ast.KeyForeignUnique},
	{entity.OptUniqueKey, ast.KeyUnique},
}

// indexKinds lists the index declarations in the order they are scanned.
var indexKinds = []struct {
	option string
	unique bool
}{
	{entity.OptIndex, false},
	{entity.OptUniqueIndex, true},
}

// declEntries expands a declaration into (name, value) pairs.
//
//	foreignkey: 'user.id'       -> {prop: 'user.id'}
//	uniquekey: 'name'           -> {name: true}
//	index: true                 -> {prop: true}
//	index: false                -> {prop: true}
//	index: {name: true, ...}    -> as written
//
// Only an absent or null declaration declares nothing. A foreign scalar that
// is not a reference, false included, fails later in ParseReference.
func declEntries(decl entity.KeyDecl, property string, foreign bool) []entity.KeyEntry {
	if !decl.IsSet() {
		return nil
	}
	if decl.IsMapping() {
		return decl.Entries()
	}
	v := decl.ScalarValue()
	if foreign {
		return []entity.KeyEntry{{Name: property, Value: v}}
	}
	if s, ok := v.(string); ok && s != "" {
		return []entity.KeyEntry{{Name: s, Value: true}}
	}
	return []entity.KeyEntry{{Name: property, Value: true}}
}

// ParseReference splits a "table.field" foreign reference.
func ParseReference(ref any) (table, field string, ok bool) {
	s, isString := ref.(string)
	if !isString || strings.Count(s, ".") != 1 {
		return "", "", false
	}
	table, field, _ = strings.Cut(s, ".")
	if table == "" || field == "" {
		return "", "", false
	}
	return table, field, true
}

// BuildKeys merges the key declarations of props into key definitions.
// The primary key on id comes first; the others keep first-seen order and
// accumulate fields under a shared name.
func BuildKeys(props []entity.Property) ([]*ast.Key, error) {
	keys := []*ast.Key{{Name: PrimaryKey, Type: ast.KeyPrimary, Fields: []string{"id"}}}
	byName := map[string]*ast.Key{PrimaryKey: keys[0]}

	for _, p := range props {
		for _, kind := range keyKinds {
			foreign := kind.typ.IsForeign()
			for _, entry := range declEntries(p.Decl(kind.option), p.Name, foreign) {
				var refTable, refField string
				if foreign {
					var ok bool
					if refTable, refField, ok = ParseReference(entry.Value); !ok {
						return nil, alerr.NewMalformedReferenceError(p.Name, entry.Name, entry.Value)
					}
				}

				key, exists := byName[entry.Name]
				if !exists {
					key = &ast.Key{Name: entry.Name, Type: kind.typ, Fields: []string{p.Name}}
					if foreign {
						key.RefTable = refTable
						key.RefFields = []string{refField}
					}
					byName[entry.Name] = key
					keys = append(keys, key)
					continue
				}

				if key.Type != kind.typ {
					return nil, alerr.NewKeyKindError(entry.Name, p.Name, key.Type.String(), kind.typ.String())
				}
				if foreign && key.RefTable != refTable {
					return nil, alerr.NewForeignTargetError(entry.Name, p.Name, key.RefTable, refTable)
				}
				key.Fields = append(key.Fields, p.Name)
				if foreign {
					key.RefFields = append(key.RefFields, refField)
				}
			}
		}
	}
	return keys, nil
}

// BuildIndexes merges the index declarations of props into index definitions,
// in first-seen order.
func BuildIndexes(props []entity.Property) ([]*ast.Index, error) {
	var indexes []*ast.Index
	byName := make(map[string]*ast.Index)

	for _, p := range props {
		for _, kind := range indexKinds {
			for _, entry := range declEntries(p.Decl(kind.option), p.Name, false) {
				idx, exists := byName[entry.Name]
				if !exists {
					idx = &ast.Index{Name: entry.Name, Unique: kind.unique, Fields: []string{p.Name}}
					byName[entry.Name] = idx
					indexes = append(indexes, idx)
					continue
				}
				if idx.Unique != kind.unique {
					return nil, alerr.NewUniquenessError(entry.Name, p.Name)
				}
				idx.Fields = append(idx.Fields, p.Name)
			}
		}
	}
	return indexes, nil
}

