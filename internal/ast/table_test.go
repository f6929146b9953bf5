package ast

import (
	"slices"
	"strings"
	"testing"
)

func validTable() *Table {
	t := NewTable("test_basic")
	t.Fields = []*Field{
		NewField("id", TypeInteger, "10", true, true),
		NewField("userid", TypeInteger, "10", true, false),
		NewField("grade", TypeNumber, "10,5", false, false),
	}
	t.Keys = []*Key{
		{Name: "primary", Type: KeyPrimary, Fields: []string{"id"}},
		{Name: "userid", Type: KeyForeign, Fields: []string{"userid"}, RefTable: "user", RefFields: []string{"id"}},
	}
	t.Indexes = []*Index{{Name: "grade", Fields: []string{"grade"}}}
	return t
}

// -----------------------------------------------------------------------------
// Precision Tests
// -----------------------------------------------------------------------------

func TestSplitPrecision(t *testing.T) {
	tests := []struct {
		in           string
		wantLength   string
		wantDecimals string
	}{
		{"", "", ""},
		{"10", "10", ""},
		{"10,5", "10", "5"},
		{" 12 , 2 ", "12", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l, d := SplitPrecision(tt.in)
			if l != tt.wantLength || d != tt.wantDecimals {
				t.Errorf("SplitPrecision(%q) = %q, %q; want %q, %q", tt.in, l, d, tt.wantLength, tt.wantDecimals)
			}
		})
	}
}

func TestFieldPrecisionText(t *testing.T) {
	tests := []struct {
		field *Field
		want  string
	}{
		{NewField("a", TypeInteger, "10", true, false), "(10)"},
		{NewField("b", TypeNumber, "10,5", true, false), "(10, 5)"},
		{NewField("c", TypeNumber, "10,0", true, false), "(10)"},
	}
	for _, tt := range tests {
		t.Run(tt.field.Name, func(t *testing.T) {
			if got := tt.field.Precision(); got != tt.want {
				t.Errorf("Precision() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFieldClone(t *testing.T) {
	f := NewField("read", TypeInteger, "2", true, false)
	f.SetDefault("0")

	c := f.Clone()
	c.SetDefault("1")

	if v, _ := f.DefaultValue(); v != "0" {
		t.Errorf("clone shares default with original: %q", v)
	}
}

// -----------------------------------------------------------------------------
// Table Tests
// -----------------------------------------------------------------------------

func TestTableLookup(t *testing.T) {
	tbl := validTable()

	if tbl.Field("userid") == nil || tbl.Field("missing") != nil {
		t.Error("Field() lookup mismatch")
	}
	if tbl.Key("primary") == nil || tbl.Key("grade") != nil {
		t.Error("Key() lookup mismatch")
	}
	if tbl.Index("grade") == nil {
		t.Error("Index() lookup mismatch")
	}
	if got := tbl.FieldNames(); !slices.Equal(got, []string{"id", "userid", "grade"}) {
		t.Errorf("FieldNames() = %v", got)
	}
}

func TestTablePrevious(t *testing.T) {
	tbl := validTable()
	tests := []struct {
		field, want string
	}{
		{"id", ""},
		{"userid", "id"},
		{"grade", "userid"},
		{"missing", ""},
	}
	for _, tt := range tests {
		if got := tbl.Previous(tt.field); got != tt.want {
			t.Errorf("Previous(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestTableErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Table)
		want   string // substring of one problem; empty means valid
	}{
		{"valid", func(*Table) {}, ""},
		{"empty name", func(t *Table) { t.Name = "" }, msgTableNameRequired},
		{"no fields", func(t *Table) { t.Fields = nil; t.Keys = nil; t.Indexes = nil }, msgTableNeedsField},
		{"duplicate field", func(t *Table) { t.Fields = append(t.Fields, NewField("id", TypeInteger, "10", true, false)) }, `duplicate field "id"`},
		{"char without length", func(t *Table) { t.Fields = append(t.Fields, NewField("nonce", TypeChar, "", true, false)) }, "requires a length"},
		{"bad decimals", func(t *Table) { t.Fields[2].Decimals = "12" }, "invalid decimals"},
		{"bad length", func(t *Table) { t.Fields[1].Length = "ten" }, "invalid length"},
		{"unknown key field", func(t *Table) { t.Keys[1].Fields = []string{"nope"} }, `unknown field "nope"`},
		{"ref count mismatch", func(t *Table) { t.Keys[1].RefFields = nil }, msgFKFieldCountMatch},
		{"missing ref table", func(t *Table) { t.Keys[1].RefTable = "" }, msgFKNeedsRefTable},
		{"empty index", func(t *Table) { t.Indexes[0].Fields = nil }, msgIndexNeedsField},
		{"key and index share a name", func(t *Table) { t.Indexes[0] = &Index{Name: "userid", Fields: []string{"userid"}} }, ""},
		{"duplicate key", func(t *Table) { t.Keys = append(t.Keys, &Key{Name: "userid", Type: KeyUnique, Fields: []string{"grade"}}) }, `duplicate key "userid"`},
		{"duplicate index", func(t *Table) { t.Indexes = append(t.Indexes, &Index{Name: "grade", Fields: []string{"userid"}}) }, `duplicate index "grade"`},
		{"recorded error", func(t *Table) { t.AddError("unknown TYPE %q", "blob") }, `unknown TYPE "blob"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := validTable()
			tt.mutate(tbl)
			problems := tbl.Errors()

			if tt.want == "" {
				if len(problems) != 0 {
					t.Fatalf("expected valid table, got %v", problems)
				}
				return
			}
			found := false
			for _, p := range problems {
				if strings.Contains(p, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("Errors() = %v, want a problem containing %q", problems, tt.want)
			}
			if tbl.Valid() {
				t.Error("Valid() = true for invalid table")
			}
		})
	}
}

func TestTableClone(t *testing.T) {
	tbl := validTable()
	tbl.AddError("loaded with problems")
	c := tbl.Clone()

	c.Fields[0].Name = "changed"
	c.Keys[1].RefFields[0] = "changed"
	c.Indexes[0].Fields[0] = "changed"

	if tbl.Fields[0].Name != "id" || tbl.Keys[1].RefFields[0] != "id" || tbl.Indexes[0].Fields[0] != "grade" {
		t.Error("Clone() shares memory with the original")
	}
	if len(c.Errors()) == 0 {
		t.Error("Clone() dropped recorded errors")
	}
}

// -----------------------------------------------------------------------------
// Structure Tests
// -----------------------------------------------------------------------------

func TestStructureAddTable(t *testing.T) {
	s := &Structure{}
	s.AddTable(NewTable("a"))
	s.AddTable(NewTable("b"))
	replacement := NewTable("a")
	replacement.Comment = "replaced"
	s.AddTable(replacement)

	if got := s.TableNames(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("TableNames() = %v", got)
	}
	if s.Table("a").Comment != "replaced" {
		t.Error("AddTable() should replace in place")
	}
	var nilStructure *Structure
	if nilStructure.Table("a") != nil {
		t.Error("Table() on nil structure should return nil")
	}
}

// -----------------------------------------------------------------------------
// Type Tests
// -----------------------------------------------------------------------------

func TestParseFieldType(t *testing.T) {
	for ft := TypeInteger; ft <= TypeDatetime; ft++ {
		if got, ok := ParseFieldType(ft.String()); !ok || got != ft {
			t.Errorf("ParseFieldType(%q) = %v, %v", ft.String(), got, ok)
		}
		if got, ok := ParseFieldType(ft.PHPConst()); !ok || got != ft {
			t.Errorf("ParseFieldType(%q) = %v, %v", ft.PHPConst(), got, ok)
		}
	}
	if _, ok := ParseFieldType("blob"); ok {
		t.Error("ParseFieldType(blob) should fail")
	}
}

func TestParseKeyType(t *testing.T) {
	for kt := KeyPrimary; kt <= KeyForeignUnique; kt++ {
		if got, ok := ParseKeyType(kt.String()); !ok || got != kt {
			t.Errorf("ParseKeyType(%q) = %v, %v", kt.String(), got, ok)
		}
	}
	if _, ok := ParseKeyType("check"); ok {
		t.Error("ParseKeyType(check) should fail")
	}
	if !KeyForeignUnique.IsForeign() || KeyUnique.IsForeign() {
		t.Error("IsForeign() mismatch")
	}
}
