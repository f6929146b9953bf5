// Package cache records migrate runs in a local SQLite database together with
// a msgpack snapshot of the install.xml structure each run produced.
// The cache is optional: losing it only loses history.
package cache

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
)

// -----------------------------------------------------------------------------
// Serializable structure types
// These mirror the AST types with explicit msgpack field names so that a
// renamed Go field does not silently invalidate stored snapshots.
// -----------------------------------------------------------------------------

type structureRecord struct {
	Path    string         `msgpack:"path"`
	Version int64          `msgpack:"version"`
	Comment string         `msgpack:"comment,omitempty"`
	Tables  []*tableRecord `msgpack:"tables"`
}

type tableRecord struct {
	Name    string         `msgpack:"name"`
	Comment string         `msgpack:"comment,omitempty"`
	Fields  []*fieldRecord `msgpack:"fields"`
	Keys    []*keyRecord   `msgpack:"keys,omitempty"`
	Indexes []*indexRecord `msgpack:"indexes,omitempty"`
}

type fieldRecord struct {
	Name     string  `msgpack:"name"`
	Type     string  `msgpack:"type"`
	Length   string  `msgpack:"length,omitempty"`
	Decimals string  `msgpack:"decimals,omitempty"`
	NotNull  bool    `msgpack:"notnull"`
	Sequence bool    `msgpack:"sequence"`
	Default  *string `msgpack:"default"`
	Comment  string  `msgpack:"comment,omitempty"`
}

type keyRecord struct {
	Name      string   `msgpack:"name"`
	Type      string   `msgpack:"type"`
	Fields    []string `msgpack:"fields"`
	RefTable  string   `msgpack:"reftable,omitempty"`
	RefFields []string `msgpack:"reffields,omitempty"`
}

type indexRecord struct {
	Name   string   `msgpack:"name"`
	Unique bool     `msgpack:"unique"`
	Fields []string `msgpack:"fields"`
}

// -----------------------------------------------------------------------------
// Serialization functions
// -----------------------------------------------------------------------------

// SerializeStructure converts a structure to msgpack bytes for storage.
func SerializeStructure(s *ast.Structure) ([]byte, error) {
	rec := &structureRecord{}
	if s != nil {
		rec.Path = s.Path
		rec.Version = s.Version
		rec.Comment = s.Comment
		for _, t := range s.Tables {
			rec.Tables = append(rec.Tables, tableToRecord(t))
		}
	}

	data, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheWrite, err, "failed to serialize structure")
	}
	return data, nil
}

// DeserializeStructure converts msgpack bytes back to a structure.
// Unknown type names are recorded as table errors, as install.xml loading does.
func DeserializeStructure(data []byte) (*ast.Structure, error) {
	var rec structureRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to deserialize structure")
	}

	s := &ast.Structure{Path: rec.Path, Version: rec.Version, Comment: rec.Comment}
	for _, tr := range rec.Tables {
		s.Tables = append(s.Tables, tableFromRecord(tr))
	}
	return s, nil
}

func tableToRecord(t *ast.Table) *tableRecord {
	tr := &tableRecord{Name: t.Name, Comment: t.Comment}
	for _, f := range t.Fields {
		tr.Fields = append(tr.Fields, &fieldRecord{
			Name:     f.Name,
			Type:     f.Type.String(),
			Length:   f.Length,
			Decimals: f.Decimals,
			NotNull:  f.NotNull,
			Sequence: f.Sequence,
			Default:  f.Clone().Default,
			Comment:  f.Comment,
		})
	}
	for _, k := range t.Keys {
		c := k.Clone()
		tr.Keys = append(tr.Keys, &keyRecord{
			Name:      c.Name,
			Type:      c.Type.String(),
			Fields:    c.Fields,
			RefTable:  c.RefTable,
			RefFields: c.RefFields,
		})
	}
	for _, i := range t.Indexes {
		c := i.Clone()
		tr.Indexes = append(tr.Indexes, &indexRecord{Name: c.Name, Unique: c.Unique, Fields: c.Fields})
	}
	return tr
}

func tableFromRecord(tr *tableRecord) *ast.Table {
	t := ast.NewTable(tr.Name)
	t.Comment = tr.Comment
	for _, fr := range tr.Fields {
		typ, ok := ast.ParseFieldType(fr.Type)
		if !ok {
			t.AddError("field %q has unknown type %q", fr.Name, fr.Type)
		}
		t.Fields = append(t.Fields, &ast.Field{
			Name:     fr.Name,
			Type:     typ,
			Length:   fr.Length,
			Decimals: fr.Decimals,
			NotNull:  fr.NotNull,
			Sequence: fr.Sequence,
			Default:  fr.Default,
			Comment:  fr.Comment,
		})
	}
	for _, kr := range tr.Keys {
		typ, ok := ast.ParseKeyType(kr.Type)
		if !ok {
			t.AddError("key %q has unknown type %q", kr.Name, kr.Type)
		}
		t.Keys = append(t.Keys, &ast.Key{
			Name:      kr.Name,
			Type:      typ,
			Fields:    kr.Fields,
			RefTable:  kr.RefTable,
			RefFields: kr.RefFields,
		})
	}
	for _, ir := range tr.Indexes {
		t.Indexes = append(t.Indexes, &ast.Index{Name: ir.Name, Unique: ir.Unique, Fields: ir.Fields})
	}
	return t
}
