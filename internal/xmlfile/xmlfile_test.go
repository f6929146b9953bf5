package xmlfile

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
	"github.com/hlop3z/swan/internal/derive"
	"github.com/hlop3z/swan/internal/entity"
)

func sampleStructure() *ast.Structure {
	t := ast.NewTable("local_example_message")
	t.Comment = `Messages & "replies"`
	score := ast.NewField("score", ast.TypeNumber, "10,5", false, false)
	score.SetDefault("1.5")
	t.Fields = []*ast.Field{
		ast.NewField("id", ast.TypeInteger, "10", true, true),
		ast.NewField("userid", ast.TypeInteger, "10", true, false),
		ast.NewField("body", ast.TypeText, "", false, false),
		score,
	}
	t.Keys = []*ast.Key{
		{Name: "primary", Type: ast.KeyPrimary, Fields: []string{"id"}},
		{Name: "userid", Type: ast.KeyForeign, Fields: []string{"userid"}, RefTable: "user", RefFields: []string{"id"}},
	}
	t.Indexes = []*ast.Index{{Name: "score-userid", Unique: true, Fields: []string{"score", "userid"}}}

	return &ast.Structure{
		Path:    "local/example/db",
		Version: 2024010100,
		Comment: "XMLDB file for local/example",
		Tables:  []*ast.Table{t},
	}
}

func TestFormat(t *testing.T) {
	want := `<?xml version="1.0" encoding="UTF-8" ?>
<XMLDB PATH="local/example/db" VERSION="2024010100" COMMENT="XMLDB file for local/example"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
    xsi:noNamespaceSchemaLocation="../../../lib/xmldb/xmldb.xsd"
>
  <TABLES>
    <TABLE NAME="local_example_message" COMMENT="Messages &amp; &quot;replies&quot;">
      <FIELDS>
        <FIELD NAME="id" TYPE="int" LENGTH="10" NOTNULL="true" SEQUENCE="true"/>
        <FIELD NAME="userid" TYPE="int" LENGTH="10" NOTNULL="true" SEQUENCE="false"/>
        <FIELD NAME="body" TYPE="text" NOTNULL="false" SEQUENCE="false"/>
        <FIELD NAME="score" TYPE="number" LENGTH="10" NOTNULL="false" DEFAULT="1.5" SEQUENCE="false" DECIMALS="5"/>
      </FIELDS>
      <KEYS>
        <KEY NAME="primary" TYPE="primary" FIELDS="id"/>
        <KEY NAME="userid" TYPE="foreign" FIELDS="userid" REFTABLE="user" REFFIELDS="id"/>
      </KEYS>
      <INDEXES>
        <INDEX NAME="score-userid" UNIQUE="true" FIELDS="score, userid"/>
      </INDEXES>
    </TABLE>
  </TABLES>
</XMLDB>
`
	if got := Format(sampleStructure()); got != want {
		t.Errorf("Format() =\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatCoreSchemaLocation(t *testing.T) {
	got := Format(&ast.Structure{Path: "lib/db", Version: 1})
	if !strings.Contains(got, `xsi:noNamespaceSchemaLocation="../../lib/xmldb/xmldb.xsd"`) {
		t.Errorf("Format() = %s", got)
	}
	if strings.Contains(got, "<TABLES>") {
		t.Error("empty structure should have no TABLES element")
	}
}

func assertTablesEqual(t *testing.T, got, want *ast.Table) {
	t.Helper()
	if got.Name != want.Name || got.Comment != want.Comment {
		t.Errorf("table = %q %q, want %q %q", got.Name, got.Comment, want.Name, want.Comment)
	}
	if !slices.Equal(got.FieldNames(), want.FieldNames()) {
		t.Fatalf("%s fields = %v, want %v", want.Name, got.FieldNames(), want.FieldNames())
	}
	for i, wf := range want.Fields {
		gf := got.Fields[i]
		gd, gok := gf.DefaultValue()
		wd, wok := wf.DefaultValue()
		if wf.Sequence {
			wok = false
			wd = ""
		}
		if gf.Type != wf.Type || gf.Length != wf.Length || gf.Decimals != wf.Decimals ||
			gf.NotNull != wf.NotNull || gf.Sequence != wf.Sequence || gf.Comment != wf.Comment ||
			gd != wd || gok != wok {
			t.Errorf("%s.%s = %+v, want %+v", want.Name, wf.Name, *gf, *wf)
		}
	}
	if len(got.Keys) != len(want.Keys) {
		t.Fatalf("%s keys = %d, want %d", want.Name, len(got.Keys), len(want.Keys))
	}
	for i, wk := range want.Keys {
		gk := got.Keys[i]
		if gk.Name != wk.Name || gk.Type != wk.Type || !slices.Equal(gk.Fields, wk.Fields) ||
			gk.RefTable != wk.RefTable || !slices.Equal(gk.RefFields, wk.RefFields) {
			t.Errorf("%s key %d = %+v, want %+v", want.Name, i, *gk, *wk)
		}
	}
	if len(got.Indexes) != len(want.Indexes) {
		t.Fatalf("%s indexes = %d, want %d", want.Name, len(got.Indexes), len(want.Indexes))
	}
	for i, wi := range want.Indexes {
		gi := got.Indexes[i]
		if gi.Name != wi.Name || gi.Unique != wi.Unique || !slices.Equal(gi.Fields, wi.Fields) {
			t.Errorf("%s index %d = %+v, want %+v", want.Name, i, *gi, *wi)
		}
	}
}

func TestRoundTripSample(t *testing.T) {
	want := sampleStructure()
	got, err := Parse(strings.NewReader(Format(want)))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Path != want.Path || got.Version != want.Version || got.Comment != want.Comment {
		t.Errorf("header = %q %d %q", got.Path, got.Version, got.Comment)
	}
	assertTablesEqual(t, got.Tables[0], want.Tables[0])
}

func TestRoundTripMultiLineComments(t *testing.T) {
	s := sampleStructure()
	s.Tables[0].Comment = "Messages\r\nsent between users"
	s.Tables[0].Fields[2].Comment = "Body text.\n\tMay contain HTML."

	out := Format(s)
	if !strings.Contains(out, `COMMENT="Body text.&#10;&#9;May contain HTML."`) {
		t.Errorf("Format() did not escape the field comment:\n%s", out)
	}
	got, err := Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c := got.Tables[0].Comment; c != "Messages\r\nsent between users" {
		t.Errorf("table comment = %q", c)
	}
	if c := got.Tables[0].Field("body").Comment; c != "Body text.\n\tMay contain HTML." {
		t.Errorf("field comment = %q", c)
	}
}

func TestRoundTripDerived(t *testing.T) {
	entities, err := entity.LoadDir(context.Background(), filepath.Join("..", "entity", "testdata"))
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	want, err := derive.DeriveStructure(derive.StructureOptions{
		Component: "local_example",
		Dir:       "local/example",
		Version:   2024010100,
	}, entities)
	if err != nil {
		t.Fatalf("DeriveStructure() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "db", "install.xml")
	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !slices.Equal(got.TableNames(), want.TableNames()) {
		t.Fatalf("tables = %v, want %v", got.TableNames(), want.TableNames())
	}
	for _, wt := range want.Tables {
		gt := got.Table(wt.Name)
		if !gt.Valid() {
			t.Errorf("%s errors = %v", wt.Name, gt.Errors())
		}
		assertTablesEqual(t, gt, wt)
	}
}

func TestParseUnknownTypesRecorded(t *testing.T) {
	src := `<XMLDB PATH="local/x/db" VERSION="1"><TABLES>
<TABLE NAME="t"><FIELDS>
<FIELD NAME="id" TYPE="int" LENGTH="10" NOTNULL="true" SEQUENCE="true"/>
<FIELD NAME="blob" TYPE="jsonb" NOTNULL="false" SEQUENCE="false"/>
</FIELDS><KEYS><KEY NAME="primary" TYPE="primary" FIELDS="id"/></KEYS></TABLE>
</TABLES></XMLDB>`
	s, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	tbl := s.Table("t")
	if tbl.Valid() {
		t.Fatal("table with an unknown field type should be invalid")
	}
	if errs := tbl.Errors(); !slices.ContainsFunc(errs, func(e string) bool { return strings.Contains(e, "jsonb") }) {
		t.Errorf("Errors() = %v", errs)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not xml", "<XMLDB"},
		{"wrong root", `<NOTXMLDB PATH="x"/>`},
		{"bad version", `<XMLDB PATH="x" VERSION="soon"/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if !alerr.Is(err, alerr.ErrParse) {
				t.Errorf("error = %v, want E3002", err)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "install.xml")
	if _, err := Load(path); !alerr.Is(err, alerr.ErrLoad) {
		t.Errorf("Load() error = %v, want E3001", err)
	}
	s, err := LoadOrEmpty(path)
	if err != nil {
		t.Fatalf("LoadOrEmpty() error = %v", err)
	}
	if len(s.Tables) != 0 {
		t.Errorf("tables = %v", s.TableNames())
	}
}

func TestLoadAddsFileContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "install.xml")
	if err := os.WriteFile(path, []byte("<XMLDB"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	ae, ok := err.(*alerr.Error)
	if !ok {
		t.Fatalf("error = %v", err)
	}
	if file, _, ok := ae.Location(); !ok || file != path {
		t.Errorf("Location() = %q, %v", file, ok)
	}
}
