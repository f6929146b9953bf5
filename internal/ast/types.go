// Package ast defines the XMLDB schema model (fields, keys, indexes, tables,
// structures) and the change operations computed between two schemas.
package ast

// FieldType is the XMLDB column type of a field.
type FieldType int

const (
	TypeIncorrect FieldType = iota
	TypeInteger
	TypeNumber
	TypeFloat
	TypeChar
	TypeText
	TypeBinary
	TypeDatetime
)

// String returns the install.xml name of the type (TYPE="int").
func (t FieldType) String() string {
	switch t {
	case TypeInteger:
		return "int"
	case TypeNumber:
		return "number"
	case TypeFloat:
		return "float"
	case TypeChar:
		return "char"
	case TypeText:
		return "text"
	case TypeBinary:
		return "binary"
	case TypeDatetime:
		return "datetime"
	default:
		return "incorrect"
	}
}

// PHPConst returns the PHP constant naming the type (XMLDB_TYPE_INTEGER).
func (t FieldType) PHPConst() string {
	switch t {
	case TypeInteger:
		return "XMLDB_TYPE_INTEGER"
	case TypeNumber:
		return "XMLDB_TYPE_NUMBER"
	case TypeFloat:
		return "XMLDB_TYPE_FLOAT"
	case TypeChar:
		return "XMLDB_TYPE_CHAR"
	case TypeText:
		return "XMLDB_TYPE_TEXT"
	case TypeBinary:
		return "XMLDB_TYPE_BINARY"
	case TypeDatetime:
		return "XMLDB_TYPE_DATETIME"
	default:
		return "XMLDB_TYPE_INCORRECT"
	}
}

// ParseFieldType accepts both the install.xml name ("int") and the PHP
// constant ("XMLDB_TYPE_INTEGER"). Unknown names yield TypeIncorrect, false.
func ParseFieldType(s string) (FieldType, bool) {
	for t := TypeInteger; t <= TypeDatetime; t++ {
		if s == t.String() || s == t.PHPConst() {
			return t, true
		}
	}
	return TypeIncorrect, false
}

// KeyType is the kind of a key definition.
type KeyType int

const (
	KeyIncorrect KeyType = iota
	KeyPrimary
	KeyUnique
	KeyForeign
	KeyForeignUnique
)

// String returns the install.xml name of the key type.
func (k KeyType) String() string {
	switch k {
	case KeyPrimary:
		return "primary"
	case KeyUnique:
		return "unique"
	case KeyForeign:
		return "foreign"
	case KeyForeignUnique:
		return "foreign-unique"
	default:
		return "incorrect"
	}
}

// PHPConst returns the PHP constant naming the key type.
func (k KeyType) PHPConst() string {
	switch k {
	case KeyPrimary:
		return "XMLDB_KEY_PRIMARY"
	case KeyUnique:
		return "XMLDB_KEY_UNIQUE"
	case KeyForeign:
		return "XMLDB_KEY_FOREIGN"
	case KeyForeignUnique:
		return "XMLDB_KEY_FOREIGN_UNIQUE"
	default:
		return "XMLDB_KEY_INCORRECT"
	}
}

// IsForeign reports whether keys of this kind reference another table.
func (k KeyType) IsForeign() bool {
	return k == KeyForeign || k == KeyForeignUnique
}

// ParseKeyType converts an install.xml key type name.
func ParseKeyType(s string) (KeyType, bool) {
	for k := KeyPrimary; k <= KeyForeignUnique; k++ {
		if s == k.String() {
			return k, true
		}
	}
	return KeyIncorrect, false
}

// OpType represents the type of a change operation.
type OpType int

const (
	// OpCreateTable creates a table that is absent from the stored schema.
	OpCreateTable OpType = iota

	// OpDropTable removes a stored table.
	OpDropTable

	// OpAddField adds a field that is absent from the stored table.
	OpAddField

	// OpDropField removes a stored field that is no longer derived.
	OpDropField

	// OpChangeFieldType changes the XMLDB type of a field.
	OpChangeFieldType

	// OpChangeFieldPrecision changes length or decimals of a field.
	OpChangeFieldPrecision

	// OpChangeFieldNotNull changes the nullability of a field.
	OpChangeFieldNotNull

	// OpChangeFieldDefault changes or drops the default of a field.
	OpChangeFieldDefault
)

// AllOpTypes lists every operation type in declaration order.
var AllOpTypes = []OpType{
	OpCreateTable, OpDropTable, OpAddField, OpDropField,
	OpChangeFieldType, OpChangeFieldPrecision, OpChangeFieldNotNull, OpChangeFieldDefault,
}

// String returns the string representation of an OpType.
func (o OpType) String() string {
	switch o {
	case OpCreateTable:
		return "CreateTable"
	case OpDropTable:
		return "DropTable"
	case OpAddField:
		return "AddField"
	case OpDropField:
		return "DropField"
	case OpChangeFieldType:
		return "ChangeFieldType"
	case OpChangeFieldPrecision:
		return "ChangeFieldPrecision"
	case OpChangeFieldNotNull:
		return "ChangeFieldNotNull"
	case OpChangeFieldDefault:
		return "ChangeFieldDefault"
	default:
		return "Unknown"
	}
}

// IsTableLevel reports whether the operation acts on a whole table.
func (o OpType) IsTableLevel() bool {
	return o == OpCreateTable || o == OpDropTable
}
