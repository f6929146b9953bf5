package engine

import (
	"slices"
	"testing"

	"github.com/hlop3z/swan/internal/ast"
)

func TestMerge(t *testing.T) {
	storedKept := newTestTable("kept")
	stored := &ast.Structure{Version: 1, Tables: []*ast.Table{
		storedKept,
		newTestTable("old"),
	}}
	derivedKept := newTestTable("kept", ast.NewField("x", ast.TypeInteger, "10", true, false))
	derived := &ast.Structure{Path: "local/example/db", Version: 2, Tables: []*ast.Table{
		newTestTable("fresh"),
		derivedKept,
	}}

	tests := []struct {
		name       string
		opts       DiffOptions
		wantTables []string
		wantKept   *ast.Table
	}{
		{"all", DiffOptions{}, []string{"fresh", "kept", "old"}, derivedKept},
		{"drop missing", DiffOptions{DropMissing: true}, []string{"fresh", "kept"}, derivedKept},
		{"selected new table", DiffOptions{Tables: []string{"fresh"}}, []string{"fresh", "kept", "old"}, storedKept},
		{"selected ignores drop", DiffOptions{Tables: []string{"kept"}, DropMissing: true}, []string{"kept", "old"}, derivedKept},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(derived, stored, tt.opts)
			if names := got.TableNames(); !slices.Equal(names, tt.wantTables) {
				t.Errorf("tables = %v, want %v", names, tt.wantTables)
			}
			if got.Table("kept") != tt.wantKept {
				t.Error("kept table taken from the wrong structure")
			}
			if got.Version != 2 || got.Path != "local/example/db" {
				t.Errorf("header = %q %d", got.Path, got.Version)
			}
		})
	}
}

func TestMergeNoStored(t *testing.T) {
	derived := &ast.Structure{Tables: []*ast.Table{newTestTable("a"), newTestTable("b")}}
	got := Merge(derived, nil, DiffOptions{Tables: []string{"b"}})
	if names := got.TableNames(); !slices.Equal(names, []string{"b"}) {
		t.Errorf("tables = %v", names)
	}
}

func TestMergeAppliedDiffIsEmpty(t *testing.T) {
	stored := &ast.Structure{Tables: []*ast.Table{newTestTable("kept"), newTestTable("old")}}
	derived := &ast.Structure{Tables: []*ast.Table{
		newTestTable("kept", ast.NewField("x", ast.TypeInteger, "10", true, false)),
		newTestTable("fresh"),
	}}
	for _, opts := range []DiffOptions{{}, {DropMissing: true}, {Tables: []string{"kept"}}} {
		merged := Merge(derived, stored, opts)
		p := NewPlan("local_example", 2)
		if err := p.Diff(derived, merged, opts); err != nil {
			t.Fatal(err)
		}
		if !p.Empty() {
			t.Errorf("%+v: diff after merge = %v", opts, opTypes(p.Operations()))
		}
	}
}
