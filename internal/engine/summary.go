package engine

import (
	"fmt"
	"strings"

	"github.com/hlop3z/swan/internal/ast"
)

// Summary counts operations per type.
type Summary struct {
	Counts map[ast.OpType]int
	Tables []string // tables touched, in first-seen order
}

// Summarize counts ops.
func Summarize(ops []ast.Operation) Summary {
	s := Summary{Counts: make(map[ast.OpType]int)}
	seen := make(map[string]bool)
	for _, op := range ops {
		s.Counts[op.Type()]++
		if !seen[op.Table()] {
			seen[op.Table()] = true
			s.Tables = append(s.Tables, op.Table())
		}
	}
	return s
}

// Total returns the number of operations.
func (s Summary) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

var opNouns = map[ast.OpType][2]string{
	ast.OpCreateTable:          {"table created", "tables created"},
	ast.OpDropTable:            {"table dropped", "tables dropped"},
	ast.OpAddField:             {"field added", "fields added"},
	ast.OpDropField:            {"field dropped", "fields dropped"},
	ast.OpChangeFieldType:      {"type changed", "types changed"},
	ast.OpChangeFieldPrecision: {"precision changed", "precisions changed"},
	ast.OpChangeFieldNotNull:   {"nullability changed", "nullabilities changed"},
	ast.OpChangeFieldDefault:   {"default changed", "defaults changed"},
}

// String renders the summary as "1 table created, 2 fields added", or
// "no changes".
func (s Summary) String() string {
	var parts []string
	for _, typ := range ast.AllOpTypes {
		n := s.Counts[typ]
		if n == 0 {
			continue
		}
		noun := opNouns[typ][0]
		if n > 1 {
			noun = opNouns[typ][1]
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, noun))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}

// Describe returns one line per operation, e.g. "AddField local_example_thing.name".
func Describe(op ast.Operation) string {
	if fo, ok := op.(ast.FieldOperation); ok {
		return fmt.Sprintf("%s %s.%s", op.Type(), op.Table(), fo.Target().Name)
	}
	return fmt.Sprintf("%s %s", op.Type(), op.Table())
}
