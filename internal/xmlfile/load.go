// Package xmlfile reads and writes Moodle install.xml files.
package xmlfile

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
)

type xmlStructure struct {
	XMLName xml.Name   `xml:"XMLDB"`
	Path    string     `xml:"PATH,attr"`
	Version string     `xml:"VERSION,attr"`
	Comment string     `xml:"COMMENT,attr"`
	Tables  []xmlTable `xml:"TABLES>TABLE"`
}

type xmlTable struct {
	Name    string     `xml:"NAME,attr"`
	Comment string     `xml:"COMMENT,attr"`
	Fields  []xmlField `xml:"FIELDS>FIELD"`
	Keys    []xmlKey   `xml:"KEYS>KEY"`
	Indexes []xmlIndex `xml:"INDEXES>INDEX"`
}

type xmlField struct {
	Name     string  `xml:"NAME,attr"`
	Type     string  `xml:"TYPE,attr"`
	Length   string  `xml:"LENGTH,attr"`
	NotNull  string  `xml:"NOTNULL,attr"`
	Default  *string `xml:"DEFAULT,attr"`
	Sequence string  `xml:"SEQUENCE,attr"`
	Decimals string  `xml:"DECIMALS,attr"`
	Comment  string  `xml:"COMMENT,attr"`
}

type xmlKey struct {
	Name      string `xml:"NAME,attr"`
	Type      string `xml:"TYPE,attr"`
	Fields    string `xml:"FIELDS,attr"`
	RefTable  string `xml:"REFTABLE,attr"`
	RefFields string `xml:"REFFIELDS,attr"`
}

type xmlIndex struct {
	Name   string `xml:"NAME,attr"`
	Unique string `xml:"UNIQUE,attr"`
	Fields string `xml:"FIELDS,attr"`
}

// Load reads the install.xml file at path.
func Load(path string) (*ast.Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, alerr.WrapLoad(err, path)
	}
	s, err := Parse(bytes.NewReader(data))
	if err != nil {
		if ae, ok := err.(*alerr.Error); ok {
			ae.WithFile(path, 0)
		}
		return nil, err
	}
	return s, nil
}

// LoadOrEmpty is Load, except that a missing file yields an empty structure.
func LoadOrEmpty(path string) (*ast.Structure, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &ast.Structure{}, nil
	}
	return Load(path)
}

// Parse decodes install.xml content.
//
// Unknown field and key types do not fail the parse: they are recorded on
// the table, which then refuses to take part in any operation but a drop.
func Parse(r io.Reader) (*ast.Structure, error) {
	var doc xmlStructure
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, alerr.Wrap(alerr.ErrParse, err, "malformed install.xml")
	}

	s := &ast.Structure{Path: doc.Path, Comment: doc.Comment}
	if doc.Version != "" {
		v, err := strconv.ParseInt(doc.Version, 10, 64)
		if err != nil {
			return nil, alerr.Newf(alerr.ErrParse, "invalid VERSION %q", doc.Version)
		}
		s.Version = v
	}
	for _, xt := range doc.Tables {
		s.AddTable(xt.table())
	}
	return s, nil
}

func (xt xmlTable) table() *ast.Table {
	t := ast.NewTable(xt.Name)
	t.Comment = xt.Comment

	for _, xf := range xt.Fields {
		typ, ok := ast.ParseFieldType(xf.Type)
		if !ok {
			t.AddError("field %q has unknown type %q", xf.Name, xf.Type)
		}
		f := &ast.Field{
			Name:     xf.Name,
			Type:     typ,
			Length:   xf.Length,
			Decimals: xf.Decimals,
			NotNull:  xf.NotNull == "true",
			Sequence: xf.Sequence == "true",
			Comment:  xf.Comment,
		}
		if xf.Default != nil {
			f.SetDefault(*xf.Default)
		}
		t.Fields = append(t.Fields, f)
	}

	for _, xk := range xt.Keys {
		typ, ok := ast.ParseKeyType(xk.Type)
		if !ok {
			t.AddError("key %q has unknown type %q", xk.Name, xk.Type)
		}
		t.Keys = append(t.Keys, &ast.Key{
			Name:      xk.Name,
			Type:      typ,
			Fields:    splitList(xk.Fields),
			RefTable:  xk.RefTable,
			RefFields: splitList(xk.RefFields),
		})
	}

	for _, xi := range xt.Indexes {
		t.Indexes = append(t.Indexes, &ast.Index{
			Name:   xi.Name,
			Unique: xi.Unique == "true",
			Fields: splitList(xi.Fields),
		})
	}
	return t
}

// splitList splits a FIELDS attribute ("a, b") into names.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
