package engine

import (
	"slices"

	"github.com/hlop3z/swan/internal/ast"
)

// Merge returns the structure install.xml describes once the operations of
// a Diff with the same options are applied. Derived tables in scope replace
// their stored version. Derived tables out of scope keep their stored
// version, or are left out when they were never stored. Stored tables that
// no entity derives are kept unless Diff would drop them.
//
// Path, version and comment are taken from derived.
func Merge(derived, stored *ast.Structure, opts DiffOptions) *ast.Structure {
	out := &ast.Structure{
		Path:    derived.Path,
		Version: derived.Version,
		Comment: derived.Comment,
	}
	scoped := len(opts.Tables) > 0

	for _, t := range derived.Tables {
		if !scoped || slices.Contains(opts.Tables, t.Name) {
			out.Tables = append(out.Tables, t)
		} else if old := stored.Table(t.Name); old != nil {
			out.Tables = append(out.Tables, old)
		}
	}
	if stored == nil {
		return out
	}
	for _, t := range stored.Tables {
		if derived.Table(t.Name) != nil {
			continue
		}
		// Mirrors Plan.DropTable, which skips invalid tables.
		if opts.DropMissing && !scoped && t.Valid() {
			continue
		}
		out.Tables = append(out.Tables, t)
	}
	return out
}
