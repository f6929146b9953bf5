// Package alerr provides standardized error handling for swan.
// All errors have stable, machine-readable codes, structured context, and proper wrapping.
package alerr

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// Code represents a stable, machine-readable error code.
// Format: E{category}{number} where category is 2-9 and number is 001-999.
type Code string

// Error codes organized by category.
const (
	// Validation errors (E2xxx) - problems with entity declarations or schema definitions.
	// None of these are recoverable: the whole derivation or diff run is aborted.
	ErrMalformedForeignReference Code = "E2001" // Foreign reference is not "table.column"
	ErrInconsistentKeyKind       Code = "E2002" // Same key name declared with different kinds
	ErrInconsistentUniqueness    Code = "E2003" // Same index name declared unique and not unique
	ErrInconsistentForeignTarget Code = "E2004" // Same foreign key name references two tables
	ErrUnmappableType            Code = "E2005" // Column type cannot be inferred from logical type
	ErrInvalidDefinition         Code = "E2006" // Table definition carries validation errors
	ErrInvalidEntity             Code = "E2007" // Entity file is structurally wrong

	// I/O errors (E3xxx) - problems reading or writing files
	ErrLoad         Code = "E3001" // File could not be read
	ErrParse        Code = "E3002" // File content could not be decoded
	ErrWrite        Code = "E3003" // File could not be written
	ErrPatchFormat  Code = "E3004" // Patch target is not in the expected format
	ErrJSExecution  Code = "E3005" // Entity script failed to evaluate
	ErrJSTimeout    Code = "E3006" // Entity script timed out
	ErrSQLExecution Code = "E3007" // Generated SQL failed verification
	ErrNotGitRepo   Code = "E3008" // Path is not inside a git repository
	ErrGitOperation Code = "E3009" // A git command failed
	ErrDirtyFiles   Code = "E3010" // Files to be patched have uncommitted changes

	// Config errors (E4xxx)
	ErrConfigInvalid    Code = "E4001" // swan.yaml is missing fields or malformed
	ErrUnknownComponent Code = "E4002" // Component could not be resolved

	// Cache errors (E5xxx) - problems with the local run cache
	ErrCacheInit  Code = "E5001" // Cache initialization failed
	ErrCacheRead  Code = "E5002" // Cache read failed
	ErrCacheWrite Code = "E5003" // Cache write failed

	// Internal errors (E9xxx) - unexpected internal errors
	EInternalError Code = "E9001" // Internal error
)

// Error is the standard error type for swan.
// It provides structured error information with codes, context, and wrapping support.
type Error struct {
	code    Code           // Machine-readable error code
	message string         // Human-readable error message
	context map[string]any // Structured context data
	cause   error          // Wrapped underlying error
	stack   string         // Stack trace for debugging
}

// Error returns the formatted error string.
// Format:
//
//	[E2004] foreign keys to multiple fields must all reference the same table
//	  key: usersource
//	  table: test_fk
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.code, e.message))

	// Context in sorted order for deterministic output
	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			b.WriteString(fmt.Sprintf("\n  %s: %v", k, e.context[k]))
		}
	}

	if e.cause != nil {
		b.WriteString(fmt.Sprintf("\n  cause: %v", e.cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error for errors.Unwrap compatibility.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether the target error is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.code == targetErr.code
	}

	return false
}

// GetCode returns the error code.
func (e *Error) GetCode() Code {
	return e.code
}

// GetMessage returns the error message.
func (e *Error) GetMessage() string {
	return e.message
}

// GetContext returns the error context map.
func (e *Error) GetContext() map[string]any {
	return e.context
}

// GetCause returns the underlying cause error.
func (e *Error) GetCause() error {
	return e.cause
}

// GetStack returns the stack trace.
func (e *Error) GetStack() string {
	return e.stack
}

// With adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *Error) With(key string, value any) *Error {
	if e.context == nil {
		e.context = make(map[string]any)
	}
	e.context[key] = value
	return e
}

// WithTable adds table context to the error.
func (e *Error) WithTable(table string) *Error {
	return e.With("table", table)
}

// WithField adds field context to the error.
func (e *Error) WithField(name string) *Error {
	return e.With("field", name)
}

// WithEntity adds entity context to the error.
func (e *Error) WithEntity(name string) *Error {
	return e.With("entity", name)
}

// WithSQL adds SQL statement context to the error.
func (e *Error) WithSQL(sql string) *Error {
	return e.With("sql", sql)
}

// WithFile adds file location context to the error.
func (e *Error) WithFile(path string, line int) *Error {
	e.With("file", path)
	if line > 0 {
		e.With("line", line)
	}
	return e
}

// WithNote adds a note to the error (displayed as "note: ...").
func (e *Error) WithNote(note string) *Error {
	notes, _ := e.context["notes"].([]string)
	notes = append(notes, note)
	return e.With("notes", notes)
}

// WithHelp adds a help suggestion to the error (displayed as "help: ...").
func (e *Error) WithHelp(help string) *Error {
	if help == "" {
		return e
	}
	helps, _ := e.context["helps"].([]string)
	helps = append(helps, help)
	return e.With("helps", helps)
}

// Location returns the file location if set.
func (e *Error) Location() (file string, line int, ok bool) {
	file, _ = e.context["file"].(string)
	line, _ = e.context["line"].(int)
	ok = file != ""
	return
}

// Notes returns all notes attached to this error.
func (e *Error) Notes() []string {
	notes, _ := e.context["notes"].([]string)
	return notes
}

// Helps returns all help suggestions attached to this error.
func (e *Error) Helps() []string {
	helps, _ := e.context["helps"].([]string)
	return helps
}

// captureStack captures a stack trace for debugging.
func captureStack(skip int) string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if strings.Contains(frame.File, "runtime/") {
			if !more {
				break
			}
			continue
		}
		b.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return b.String()
}

// New creates a new Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
		stack:   captureStack(3),
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		code:    code,
		message: fmt.Sprintf(format, args...),
		context: make(map[string]any),
		stack:   captureStack(3),
	}
}

// Wrap creates a new Error that wraps an existing error.
func Wrap(code Code, err error, msg string) *Error {
	if err == nil {
		return New(code, msg)
	}
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
		cause:   err,
		stack:   captureStack(3),
	}
}

// Wrapf creates a new Error that wraps an existing error with a formatted message.
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return Wrap(code, err, fmt.Sprintf(format, args...))
}

// GetErrorCode extracts the error code from an error chain.
// Returns empty string if no code is found.
func GetErrorCode(err error) Code {
	if err == nil {
		return ""
	}

	var alerr *Error
	if errors.As(err, &alerr) {
		return alerr.code
	}

	return ""
}

// Is checks if an error has the specified code.
func Is(err error, code Code) bool {
	return GetErrorCode(err) == code
}

// HasCode checks if an error has any error code.
func HasCode(err error) bool {
	return GetErrorCode(err) != ""
}

// IsValidation reports whether err belongs to the validation family (E2xxx).
func IsValidation(err error) bool {
	return strings.HasPrefix(string(GetErrorCode(err)), "E2")
}

// IsIO reports whether err belongs to the I/O family (E3xxx).
func IsIO(err error) bool {
	return strings.HasPrefix(string(GetErrorCode(err)), "E3")
}

// WrapLoad creates an ErrLoad error for a file that could not be read.
func WrapLoad(err error, path string) *Error {
	return Wrap(ErrLoad, err, "failed to read file").WithFile(path, 0)
}

// WrapWrite creates an ErrWrite error for a file that could not be written.
func WrapWrite(err error, path string) *Error {
	return Wrap(ErrWrite, err, "failed to write file").WithFile(path, 0)
}

// WrapSQL creates an ErrSQLExecution error for a statement that failed.
func WrapSQL(err error, action, sql string) *Error {
	e := Wrap(ErrSQLExecution, err, "failed to "+action)
	if sql != "" {
		e.WithSQL(sql)
	}
	return e
}
