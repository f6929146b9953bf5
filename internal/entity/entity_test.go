package entity

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/hlop3z/swan/internal/alerr"
)

func mustLoad(t *testing.T, name string) *Entity {
	t.Helper()
	e, err := LoadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("LoadFile(%s) error = %v", name, err)
	}
	return e
}

func propertyNames(e *Entity) []string {
	var names []string
	for _, p := range e.Properties {
		names = append(names, p.Name)
	}
	return names
}

// -----------------------------------------------------------------------------
// YAML Tests
// -----------------------------------------------------------------------------

func TestParseYAMLBasic(t *testing.T) {
	e := mustLoad(t, "basic.yaml")

	if e.Name != `local_example\persistent\basic` {
		t.Errorf("Name = %q", e.Name)
	}
	if e.Table != "test_basic" {
		t.Errorf("Table = %q, want test_basic", e.Table)
	}
	if got := propertyNames(e); !slices.Equal(got, []string{"userid", "message", "read"}) {
		t.Errorf("properties = %v", got)
	}

	userid, _ := e.Property("userid")
	if userid.Type != "int" {
		t.Errorf("userid.Type = %q, want int", userid.Type)
	}
	if !userid.ForeignKey.IsSet() || userid.ForeignKey.IsMapping() || userid.ForeignKey.ScalarValue() != "user.id" {
		t.Errorf("userid.ForeignKey = %+v", userid.ForeignKey)
	}

	message, _ := e.Property("message")
	if message.Type != "raw" || message.DBType != "text" {
		t.Errorf("message = %+v", message)
	}

	read, _ := e.Property("read")
	if !read.Default.IsLiteral() || read.Default.Value() != false {
		t.Errorf("read.Default = %+v, want literal false", read.Default)
	}
}

func TestParseYAMLMappingsKeepOrder(t *testing.T) {
	e := mustLoad(t, "fk.yaml")

	sourceid, ok := e.Property("sourceid")
	if !ok {
		t.Fatal("sourceid missing")
	}
	entries := sourceid.ForeignKey.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %v", entries)
	}
	if entries[0].Name != "source" || entries[0].Value != "source.object" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Name != "usersource" || entries[1].Value != "user_source.id" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestParseYAMLDeferredDefault(t *testing.T) {
	e := mustLoad(t, "unique.yaml")

	p, _ := e.Property("timeexpires")
	if !p.Default.IsDeferred() {
		t.Errorf("timeexpires.Default = %+v, want deferred", p.Default)
	}
	if !p.Null {
		t.Error("timeexpires should be nullable")
	}

	nonce, _ := e.Property("nonce")
	if nonce.Precision != "64" {
		t.Errorf("nonce.Precision = %q, want 64", nonce.Precision)
	}
	if nonce.UniqueKey.ScalarValue() != true {
		t.Errorf("nonce.UniqueKey = %+v", nonce.UniqueKey)
	}
}

func TestParseYAMLAbstract(t *testing.T) {
	e := mustLoad(t, "base.yaml")
	if !e.Abstract {
		t.Error("Abstract = false")
	}
	if e.Table != "" {
		t.Errorf("Table = %q, want empty", e.Table)
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantCode alerr.Code
		wantHelp string
	}{
		{"empty", "", alerr.ErrInvalidEntity, ""},
		{"not yaml", "table: [unclosed", alerr.ErrParse, ""},
		{"no table", "properties: {}", alerr.ErrInvalidEntity, "add 'table: <name>' to the entity definition"},
		{"unknown key", "table: t\ntabel: x", alerr.ErrInvalidEntity, "did you mean 'table'?"},
		{"unknown option", "table: t\nproperties:\n  a:\n    type: int\n    foriegnkey: user.id", alerr.ErrInvalidEntity, "did you mean 'foreignkey'?"},
		{"no type", "table: t\nproperties:\n  a:\n    null: true", alerr.ErrInvalidEntity, ""},
		{"bad dbtype", "table: t\nproperties:\n  a:\n    type: raw\n    dbtype: txt", alerr.ErrInvalidEntity, "did you mean 'text'?"},
		{"bad null", "table: t\nproperties:\n  a:\n    type: int\n    null: maybe", alerr.ErrInvalidEntity, ""},
		{"list default", "table: t\nproperties:\n  a:\n    type: int\n    default: [1]", alerr.ErrInvalidEntity, ""},
		{"nested key", "table: t\nproperties:\n  a:\n    type: int\n    index:\n      x: {y: 1}", alerr.ErrInvalidEntity, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.src), "message.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if code := alerr.GetErrorCode(err); code != tt.wantCode {
				t.Errorf("code = %s, want %s (%v)", code, tt.wantCode, err)
			}
			if tt.wantHelp != "" {
				ae := err.(*alerr.Error)
				if !slices.Contains(ae.Helps(), tt.wantHelp) {
					t.Errorf("helps = %v, want %q", ae.Helps(), tt.wantHelp)
				}
			}
		})
	}
}

func TestParseYAMLErrorLine(t *testing.T) {
	src := "table: t\nproperties:\n  a:\n    type: int\n    bogus: 1\n"
	_, err := ParseYAML([]byte(src), "message.yaml")
	ae, ok := err.(*alerr.Error)
	if !ok {
		t.Fatalf("error = %v", err)
	}
	file, line, ok := ae.Location()
	if !ok || file != "message.yaml" || line != 5 {
		t.Errorf("Location() = %q, %d, %v; want message.yaml, 5", file, line, ok)
	}
}

func TestDuplicateProperty(t *testing.T) {
	src := "table: t\nproperties:\n  a:\n    type: int\n  a:\n    type: bool\n"
	_, err := ParseYAML([]byte(src), "dup.yaml")
	if !alerr.Is(err, alerr.ErrInvalidEntity) && !alerr.Is(err, alerr.ErrParse) {
		t.Errorf("error = %v, want E2007 or E3002", err)
	}
}

// -----------------------------------------------------------------------------
// JavaScript Tests
// -----------------------------------------------------------------------------

func TestParseJSIndex(t *testing.T) {
	e := mustLoad(t, "index.js")

	if e.Table != "test_index" {
		t.Errorf("Table = %q", e.Table)
	}
	want := []string{"kind", "fromuser", "touser", "itemid", "score", "token"}
	if got := propertyNames(e); !slices.Equal(got, want) {
		t.Errorf("properties = %v, want %v", got, want)
	}

	kind, _ := e.Property("kind")
	if kind.Type != "plugin" || kind.DBType != "char" || kind.Precision != "64" {
		t.Errorf("kind = %+v", kind)
	}
	if kind.Index.ScalarValue() != true {
		t.Errorf("kind.Index = %+v", kind.Index)
	}

	score, _ := e.Property("score")
	if !score.Null || score.Default.Value() != 1.5 {
		t.Errorf("score = %+v", score)
	}

	token, _ := e.Property("token")
	if !token.Default.IsDeferred() {
		t.Errorf("token.Default = %+v, want deferred", token.Default)
	}
}

func TestParseJSErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantCode alerr.Code
	}{
		{"no export", "const x = 1;", alerr.ErrInvalidEntity},
		{"syntax", "export default {", alerr.ErrJSExecution},
		{"throws", "throw new Error('boom');", alerr.ErrJSExecution},
		{"undefined constant", "export default { table: 't', properties: { a: { type: PARAM_NOPE } } };", alerr.ErrJSExecution},
		{"no table", "export default { properties: {} };", alerr.ErrInvalidEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJS([]byte(tt.src), "message.js")
			if code := alerr.GetErrorCode(err); code != tt.wantCode {
				t.Errorf("code = %s, want %s (%v)", code, tt.wantCode, err)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Loader Tests
// -----------------------------------------------------------------------------

func TestLoadDirSortedOrder(t *testing.T) {
	entities, err := LoadDir(context.Background(), "testdata")
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	var tables []string
	for _, e := range entities {
		tables = append(tables, e.Table)
	}
	// base, basic, fk, index, unique
	want := []string{"", "test_basic", "test_fk", "test_index", "test_unique"}
	if !slices.Equal(tables, want) {
		t.Errorf("tables = %v, want %v", tables, want)
	}
}

func TestLoadDirMissing(t *testing.T) {
	entities, err := LoadDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("entities = %v", entities)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "x.yaml")); !alerr.Is(err, alerr.ErrLoad) {
		t.Errorf("missing file error = %v, want E3001", err)
	}
	if _, err := Parse([]byte("{}"), "x.json"); !alerr.Is(err, alerr.ErrParse) {
		t.Errorf("unsupported extension error = %v, want E3002", err)
	}
}

func TestSelect(t *testing.T) {
	entities := []*Entity{
		{Name: `local_example\persistent\message`},
		{Name: `local_example\persistent\thread`},
	}

	got, err := Select(entities, []string{"thread", `local_example\persistent\message`})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(got) != 2 || got[0] != entities[1] || got[1] != entities[0] {
		t.Errorf("Select() = %v", got)
	}

	_, err = Select(entities, []string{"mesage"})
	if !alerr.Is(err, alerr.ErrInvalidEntity) {
		t.Fatalf("error = %v, want E2007", err)
	}
	if helps := err.(*alerr.Error).Helps(); len(helps) != 1 || helps[0] != "did you mean 'message'?" {
		t.Errorf("helps = %v", helps)
	}
}

func TestNormalizeType(t *testing.T) {
	tests := map[string]string{
		"PARAM_INT": "int",
		" bool ":    "bool",
		"Float":     "float",
		"raw":       "raw",
	}
	for in, want := range tests {
		if got := NormalizeType(in); got != want {
			t.Errorf("NormalizeType(%q) = %q, want %q", in, got, want)
		}
	}
}
