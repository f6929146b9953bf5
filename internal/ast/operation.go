package ast

import (
	"github.com/hlop3z/swan/internal/alerr"
)

// Operation is one atomic structural difference between a stored and a
// derived schema. Operations are rendered to upgrade code and then discarded.
type Operation interface {
	// Type returns the operation type (OpCreateTable, OpAddField, etc.)
	Type() OpType

	// Table returns the name of the table the operation acts on.
	Table() string

	// Validate fails with ErrInvalidDefinition when the table the
	// operation was computed against carries validation errors.
	Validate() error
}

// FieldOperation is an Operation that targets a single field.
type FieldOperation interface {
	Operation
	Target() *Field
	Definition() *Table
}

// -----------------------------------------------------------------------------
// Embedded types for operation definitions
// -----------------------------------------------------------------------------

// TableOp carries the table definition of a table-level operation.
type TableOp struct {
	Def *Table
}

// Table returns the table name.
func (t TableOp) Table() string { return t.Def.Name }

// Definition returns the table definition.
func (t TableOp) Definition() *Table { return t.Def }

// Validate reports the table's validation errors as one InvalidDefinition error.
func (t TableOp) Validate() error {
	return validateTable(t.Def)
}

// FieldOp carries the table definition and the field of a field-level operation.
type FieldOp struct {
	Def   *Table
	Field *Field
}

// Table returns the table name.
func (f FieldOp) Table() string { return f.Def.Name }

// Definition returns the table definition.
func (f FieldOp) Definition() *Table { return f.Def }

// Target returns the field the operation acts on.
func (f FieldOp) Target() *Field { return f.Field }

// Validate reports the table's validation errors as one InvalidDefinition error.
func (f FieldOp) Validate() error {
	if err := validateTable(f.Def); err != nil {
		return err
	}
	if f.Field == nil {
		return alerr.New(alerr.ErrInvalidDefinition, "field is required").WithTable(f.Def.Name)
	}
	return nil
}

func validateTable(t *Table) error {
	if t == nil {
		return alerr.New(alerr.ErrInvalidDefinition, "table is required")
	}
	if problems := t.Errors(); len(problems) > 0 {
		return alerr.NewInvalidDefinitionError(t.Name, problems)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Table operations
// -----------------------------------------------------------------------------

// CreateTable creates a table with all of its fields, keys and indexes.
type CreateTable struct{ TableOp }

func (op *CreateTable) Type() OpType { return OpCreateTable }

// DropTable drops a stored table.
type DropTable struct{ TableOp }

func (op *DropTable) Type() OpType { return OpDropTable }

// -----------------------------------------------------------------------------
// Field operations
// -----------------------------------------------------------------------------

// AddField adds a derived field to a stored table.
type AddField struct{ FieldOp }

func (op *AddField) Type() OpType { return OpAddField }

// DropField drops a stored field. Def is the stored table.
type DropField struct{ FieldOp }

func (op *DropField) Type() OpType { return OpDropField }

// ChangeFieldType changes a field's type to the derived one.
type ChangeFieldType struct{ FieldOp }

func (op *ChangeFieldType) Type() OpType { return OpChangeFieldType }

// ChangeFieldPrecision changes a field's length or decimals.
type ChangeFieldPrecision struct{ FieldOp }

func (op *ChangeFieldPrecision) Type() OpType { return OpChangeFieldPrecision }

// ChangeFieldNotNull changes a field's nullability.
type ChangeFieldNotNull struct{ FieldOp }

func (op *ChangeFieldNotNull) Type() OpType { return OpChangeFieldNotNull }

// ChangeFieldDefault changes or drops a field's default.
type ChangeFieldDefault struct{ FieldOp }

func (op *ChangeFieldDefault) Type() OpType { return OpChangeFieldDefault }

// NewFieldOp builds the field operation of the given type.
// It panics on table-level types, which have their own constructors.
func NewFieldOp(typ OpType, def *Table, field *Field) FieldOperation {
	fo := FieldOp{Def: def, Field: field}
	switch typ {
	case OpAddField:
		return &AddField{fo}
	case OpDropField:
		return &DropField{fo}
	case OpChangeFieldType:
		return &ChangeFieldType{fo}
	case OpChangeFieldPrecision:
		return &ChangeFieldPrecision{fo}
	case OpChangeFieldNotNull:
		return &ChangeFieldNotNull{fo}
	case OpChangeFieldDefault:
		return &ChangeFieldDefault{fo}
	default:
		panic("ast: " + typ.String() + " is not a field operation")
	}
}
