package alerr

import "strings"

// NewMalformedReferenceError reports a foreign key reference that is not "table.column".
func NewMalformedReferenceError(field, key string, ref any) *Error {
	return New(ErrMalformedForeignReference, "foreignkey must be in format table.field").
		WithField(field).
		With("key", key).
		With("got", ref).
		WithHelp("write the reference as 'user.id'")
}

// NewKeyKindError reports a key name reused with a different key kind.
func NewKeyKindError(key, field, have, got string) *Error {
	return New(ErrInconsistentKeyKind, "multi-field keys must all be of the same type").
		With("key", key).
		WithField(field).
		With("have", have).
		With("got", got)
}

// NewUniquenessError reports an index name declared both unique and not unique.
func NewUniquenessError(index, field string) *Error {
	return New(ErrInconsistentUniqueness, "multi-field indexes must all be of the same uniqueness").
		With("index", index).
		WithField(field).
		WithHelp("use either 'index' or 'uniqueindex' for every field of '" + index + "'")
}

// NewForeignTargetError reports a composite foreign key whose parts reference different tables.
func NewForeignTargetError(key, field, have, got string) *Error {
	return New(ErrInconsistentForeignTarget, "foreign keys to multiple fields must all reference the same table").
		With("key", key).
		WithField(field).
		With("have", have).
		With("got", got)
}

// NewUnmappableTypeError reports a logical type that has no default column type.
// known lists the logical types that can be mapped, used for a "did you mean" hint.
func NewUnmappableTypeError(field, logical string, known []string) *Error {
	e := New(ErrUnmappableType, "DB type cannot be inferred").
		WithField(field).
		With("type", logical)
	if hint := SuggestSimilar(strings.ToLower(logical), known); hint != "" {
		e.WithHelp(hint)
	}
	return e.WithNote("set 'dbtype' explicitly for types other than " + strings.Join(known, ", "))
}

// NewInvalidDefinitionError reports a table that carries validation errors.
func NewInvalidDefinitionError(table string, problems []string) *Error {
	e := New(ErrInvalidDefinition, "table definition is invalid").WithTable(table)
	for _, p := range problems {
		e.WithNote(p)
	}
	return e
}

// NewDirtyFilesError reports files that would be patched while they carry
// uncommitted changes.
func NewDirtyFilesError(files []string) *Error {
	e := New(ErrDirtyFiles, "files to be patched have uncommitted changes")
	for _, f := range files {
		e.WithNote(f)
	}
	return e.WithHelp("commit or stash them first, or pass --force")
}
