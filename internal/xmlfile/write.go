package xmlfile

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
)

var attrEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

type writer struct {
	b strings.Builder
}

func (w *writer) line(indent int, s string) {
	w.b.WriteString(strings.Repeat(" ", indent))
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func attr(name, value string) string {
	return " " + name + `="` + attrEscaper.Replace(value) + `"`
}

func boolAttr(name string, v bool) string {
	return attr(name, strconv.FormatBool(v))
}

// Format renders s in the layout of the Moodle XMLDB editor.
func Format(s *ast.Structure) string {
	w := &writer{}
	w.line(0, `<?xml version="1.0" encoding="UTF-8" ?>`)

	head := `<XMLDB` + attr("PATH", s.Path) + attr("VERSION", strconv.FormatInt(s.Version, 10))
	if s.Comment != "" {
		head += attr("COMMENT", s.Comment)
	}
	w.line(0, head)
	w.line(4, `xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`)
	w.line(4, `xsi:noNamespaceSchemaLocation="`+schemaLocation(s.Path)+`"`)
	w.line(0, ">")

	if len(s.Tables) > 0 {
		w.line(2, "<TABLES>")
		for _, t := range s.Tables {
			w.table(t)
		}
		w.line(2, "</TABLES>")
	}
	w.line(0, "</XMLDB>")
	return w.b.String()
}

// schemaLocation points from PATH back to the Moodle root's xmldb.xsd.
func schemaLocation(path string) string {
	depth := len(strings.Split(strings.Trim(path, "/"), "/"))
	return strings.Repeat("../", depth) + "lib/xmldb/xmldb.xsd"
}

func (w *writer) table(t *ast.Table) {
	head := "<TABLE" + attr("NAME", t.Name)
	if t.Comment != "" {
		head += attr("COMMENT", t.Comment)
	}
	w.line(4, head+">")

	if len(t.Fields) > 0 {
		w.line(6, "<FIELDS>")
		for _, f := range t.Fields {
			w.line(8, "<FIELD"+fieldAttrs(f)+"/>")
		}
		w.line(6, "</FIELDS>")
	}
	if len(t.Keys) > 0 {
		w.line(6, "<KEYS>")
		for _, k := range t.Keys {
			s := "<KEY" + attr("NAME", k.Name) + attr("TYPE", k.Type.String()) + attr("FIELDS", strings.Join(k.Fields, ", "))
			if k.Type.IsForeign() {
				s += attr("REFTABLE", k.RefTable) + attr("REFFIELDS", strings.Join(k.RefFields, ", "))
			}
			w.line(8, s+"/>")
		}
		w.line(6, "</KEYS>")
	}
	if len(t.Indexes) > 0 {
		w.line(6, "<INDEXES>")
		for _, i := range t.Indexes {
			w.line(8, "<INDEX"+attr("NAME", i.Name)+boolAttr("UNIQUE", i.Unique)+attr("FIELDS", strings.Join(i.Fields, ", "))+"/>")
		}
		w.line(6, "</INDEXES>")
	}
	w.line(4, "</TABLE>")
}

func fieldAttrs(f *ast.Field) string {
	s := attr("NAME", f.Name) + attr("TYPE", f.Type.String())
	if f.Length != "" {
		s += attr("LENGTH", f.Length)
	}
	s += boolAttr("NOTNULL", f.NotNull)
	if def, ok := f.DefaultValue(); ok && !f.Sequence {
		s += attr("DEFAULT", def)
	}
	s += boolAttr("SEQUENCE", f.Sequence)
	if f.Decimals != "" {
		s += attr("DECIMALS", f.Decimals)
	}
	if f.Comment != "" {
		s += attr("COMMENT", f.Comment)
	}
	return s
}

// Write renders s to w.
func Write(w io.Writer, s *ast.Structure) error {
	if _, err := io.WriteString(w, Format(s)); err != nil {
		return alerr.Wrap(alerr.ErrWrite, err, "failed to write install.xml")
	}
	return nil
}

// Save writes s to path, creating the parent directory when needed.
func Save(path string, s *ast.Structure) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return alerr.WrapWrite(err, path)
	}
	if err := os.WriteFile(path, []byte(Format(s)), 0644); err != nil {
		return alerr.WrapWrite(err, path)
	}
	return nil
}
