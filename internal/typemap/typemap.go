// Package typemap maps logical property types to XMLDB column types,
// default precisions and value cleaning rules.
package typemap

import (
	"math"
	"strconv"
	"strings"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
)

// Logical types with a default column type.
const (
	LogicalInt   = "int"
	LogicalBool  = "bool"
	LogicalFloat = "float"
)

// Mappable lists the logical types ColumnType accepts.
var Mappable = []string{LogicalInt, LogicalBool, LogicalFloat}

// CleanRule is how a literal default is normalized before it is stored.
type CleanRule int

const (
	CleanRaw CleanRule = iota
	CleanInt
	CleanFloat
)

func (r CleanRule) String() string {
	switch r {
	case CleanInt:
		return "int"
	case CleanFloat:
		return "float"
	default:
		return "raw"
	}
}

// ColumnType returns the column type inferred for a logical type.
// Only int, bool and float can be inferred; field names the property in errors.
func ColumnType(field, logical string) (ast.FieldType, error) {
	switch logical {
	case LogicalInt, LogicalBool:
		return ast.TypeInteger, nil
	case LogicalFloat:
		return ast.TypeNumber, nil
	}
	return ast.TypeIncorrect, alerr.NewUnmappableTypeError(field, logical, Mappable)
}

// Precision returns the default precision for a column type. Bool-backed
// integers get "2", other integers "10", numbers "10,5".
func Precision(logical string, ft ast.FieldType) (string, bool) {
	switch ft {
	case ast.TypeInteger:
		if logical == LogicalBool {
			return "2", true
		}
		return "10", true
	case ast.TypeNumber:
		return "10,5", true
	}
	return "", false
}

// CleanRuleFor returns the cleaning rule for a column type.
func CleanRuleFor(ft ast.FieldType) CleanRule {
	switch ft {
	case ast.TypeInteger:
		return CleanInt
	case ast.TypeNumber, ast.TypeFloat:
		return CleanFloat
	}
	return CleanRaw
}

// Clean normalizes a literal default. v is nil, a bool, an integer, a float
// or a string. The second result is false when the default stays absent.
func Clean(rule CleanRule, v any) (string, bool) {
	if v == nil {
		return "", false
	}
	switch rule {
	case CleanInt:
		return strconv.FormatInt(toInt(v), 10), true
	case CleanFloat:
		return strconv.FormatFloat(toFloat(v), 'f', -1, 64), true
	}
	switch s := v.(type) {
	case bool:
		if s {
			return "1", true
		}
		return "", true
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case int:
		return strconv.Itoa(s), true
	}
	return "", false
}

func toInt(v any) int64 {
	switch s := v.(type) {
	case bool:
		if s {
			return 1
		}
		return 0
	case int:
		return int64(s)
	case int64:
		return s
	case float64:
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return 0
		}
		return int64(s)
	case string:
		return int64(numericPrefix(s))
	}
	return 0
}

func toFloat(v any) float64 {
	switch s := v.(type) {
	case bool:
		if s {
			return 1
		}
		return 0
	case int:
		return float64(s)
	case int64:
		return float64(s)
	case float64:
		return s
	case string:
		return numericPrefix(s)
	}
	return 0
}

// numericPrefix parses the leading number of s the way a numeric cast does:
// "12abc" is 12, "abc" is 0.
func numericPrefix(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
			end = i + 1
		case (c == '+' || c == '-') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E'):
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			i = len(s)
		}
	}
	if !seenDigit {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}
