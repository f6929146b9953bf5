// Package engine computes the change operations between a stored schema
// (install.xml) and the schema derived from entities.
package engine

import (
	"github.com/hlop3z/swan/internal/ast"
)

// Plan accumulates the operations of one upgrade step. Table operations keep
// discovery order; field operations are grouped per table, tables ordered by
// their first field operation.
//
// A Plan belongs to a single diff run and is not safe for concurrent use.
type Plan struct {
	// Component is the frankenstyle name the upgrade step belongs to.
	Component string

	// Version is the version the upgrade step upgrades to.
	Version int64

	tableOps    []ast.Operation
	fieldOps    map[string][]ast.FieldOperation
	fieldTables []string
}

// NewPlan creates an empty plan.
func NewPlan(component string, version int64) *Plan {
	return &Plan{
		Component: component,
		Version:   version,
		fieldOps:  make(map[string][]ast.FieldOperation),
	}
}

// CreateTable records the creation of t.
func (p *Plan) CreateTable(t *ast.Table) error {
	return p.Add(&ast.CreateTable{TableOp: ast.TableOp{Def: t}})
}

// DropTable records dropping t. A table with validation errors is skipped
// and DropTable reports false.
func (p *Plan) DropTable(t *ast.Table) bool {
	op := &ast.DropTable{TableOp: ast.TableOp{Def: t}}
	if op.Validate() != nil {
		return false
	}
	p.tableOps = append(p.tableOps, op)
	return true
}

// AddFieldOp records a field operation of type typ on table t.
func (p *Plan) AddFieldOp(typ ast.OpType, t *ast.Table, f *ast.Field) error {
	return p.Add(ast.NewFieldOp(typ, t, f))
}

// Add validates and records op. Every operation except DropTable fails with
// ErrInvalidDefinition when its table carries validation errors.
func (p *Plan) Add(op ast.Operation) error {
	if op.Type() == ast.OpDropTable {
		p.DropTable(op.(*ast.DropTable).Def)
		return nil
	}
	if err := op.Validate(); err != nil {
		return err
	}
	if fo, ok := op.(ast.FieldOperation); ok {
		name := fo.Table()
		if _, seen := p.fieldOps[name]; !seen {
			p.fieldTables = append(p.fieldTables, name)
		}
		p.fieldOps[name] = append(p.fieldOps[name], fo)
		return nil
	}
	p.tableOps = append(p.tableOps, op)
	return nil
}

// TableOps returns the table-level operations in discovery order.
func (p *Plan) TableOps() []ast.Operation {
	return p.tableOps
}

// FieldTables returns the tables with field operations, in the order
// their first field operation was recorded.
func (p *Plan) FieldTables() []string {
	return p.fieldTables
}

// FieldOps returns the field operations of a table in discovery order.
func (p *Plan) FieldOps(table string) []ast.FieldOperation {
	return p.fieldOps[table]
}

// Operations returns every operation in render order: table operations,
// then the field operations of each table.
func (p *Plan) Operations() []ast.Operation {
	ops := make([]ast.Operation, 0, len(p.tableOps))
	ops = append(ops, p.tableOps...)
	for _, name := range p.fieldTables {
		for _, fo := range p.fieldOps[name] {
			ops = append(ops, fo)
		}
	}
	return ops
}

// Empty reports whether the plan has no operations.
func (p *Plan) Empty() bool {
	return len(p.tableOps) == 0 && len(p.fieldTables) == 0
}
