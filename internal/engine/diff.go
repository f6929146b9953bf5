package engine

import (
	"slices"
	"strconv"
	"strings"

	"github.com/hlop3z/swan/internal/ast"
)

// DiffOptions narrows or extends a structure diff.
type DiffOptions struct {
	// Tables limits the diff to these derived tables. Empty means all.
	Tables []string

	// DropMissing drops stored tables that are no longer derived.
	// Only honoured when Tables is empty.
	DropMissing bool
}

// Diff records the operations that turn stored into derived.
//
// Algorithm:
//  1. Each derived table, in structure order, is diffed against the stored
//     table of the same name (see DiffTable).
//  2. With DropMissing, stored tables without a derived counterpart are
//     dropped, in stored order.
func (p *Plan) Diff(derived, stored *ast.Structure, opts DiffOptions) error {
	for _, t := range derived.Tables {
		if len(opts.Tables) > 0 && !slices.Contains(opts.Tables, t.Name) {
			continue
		}
		if err := p.DiffTable(t, stored.Table(t.Name)); err != nil {
			return err
		}
	}

	if opts.DropMissing && len(opts.Tables) == 0 && stored != nil {
		for _, t := range stored.Tables {
			if derived.Table(t.Name) == nil {
				p.DropTable(t)
			}
		}
	}
	return nil
}

// DiffTable records the operations that turn stored into derived. A nil
// stored table yields a single CreateTable. Otherwise every field name of
// either table is visited once, stored order first:
//
//   - only derived:  AddField (derived table and field)
//   - only stored:   DropField (stored table and field)
//   - in both:       any of ChangeFieldType, ChangeFieldPrecision,
//     ChangeFieldNotNull, ChangeFieldDefault, independently
func (p *Plan) DiffTable(derived, stored *ast.Table) error {
	if stored == nil {
		return p.CreateTable(derived)
	}

	for _, name := range fieldUnion(stored, derived) {
		have, want := stored.Field(name), derived.Field(name)
		switch {
		case have == nil:
			if err := p.AddFieldOp(ast.OpAddField, derived, want); err != nil {
				return err
			}
		case want == nil:
			if err := p.AddFieldOp(ast.OpDropField, stored, have); err != nil {
				return err
			}
		default:
			for _, typ := range FieldChanges(have, want) {
				if err := p.AddFieldOp(typ, derived, want); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// FieldChanges returns the change operation types between two versions of
// a field, in render order.
func FieldChanges(have, want *ast.Field) []ast.OpType {
	var out []ast.OpType
	if have.Type != want.Type {
		out = append(out, ast.OpChangeFieldType)
	}
	if !LooseEqual(have.Length, want.Length) || !LooseEqual(have.Decimals, want.Decimals) {
		out = append(out, ast.OpChangeFieldPrecision)
	}
	if have.NotNull != want.NotNull {
		out = append(out, ast.OpChangeFieldNotNull)
	}
	if !defaultsEqual(have.Default, want.Default) {
		out = append(out, ast.OpChangeFieldDefault)
	}
	return out
}

// fieldUnion returns the field names of a followed by the names only b has.
func fieldUnion(a, b *ast.Table) []string {
	names := a.FieldNames()
	for _, f := range b.Fields {
		if a.Field(f.Name) == nil {
			names = append(names, f.Name)
		}
	}
	return names
}

func defaultsEqual(a, b *string) bool {
	var x, y string
	if a != nil {
		x = *a
	}
	if b != nil {
		y = *b
	}
	return LooseEqual(x, y)
}

// LooseEqual compares two schema attribute values. Numeric strings compare
// by value ("10" equals "10.0"); anything else compares as text. A missing
// value is the empty string.
func LooseEqual(a, b string) bool {
	if a == b {
		return true
	}
	fa, okA := parseNumeric(a)
	fb, okB := parseNumeric(b)
	return okA && okB && fa == fb
}

func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
