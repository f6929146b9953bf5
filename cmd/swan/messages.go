package main

import (
	"fmt"
	"io"

	"github.com/hlop3z/swan/internal/ast"
	"github.com/hlop3z/swan/internal/cli"
	"github.com/hlop3z/swan/internal/engine"
)

// planList lists the operations of a plan, marked by kind of change.
func planList(plan *engine.Plan) *cli.List {
	l := cli.NewList()
	for _, op := range plan.Operations() {
		line := engine.Describe(op)
		switch op.Type() {
		case ast.OpCreateTable, ast.OpAddField:
			l.AddAdded(line)
		case ast.OpDropTable, ast.OpDropField:
			l.AddRemoved(line)
		default:
			l.AddChanged(line)
		}
	}
	return l
}

// printPlan writes the heading, operation list and summary of c.
func printPlan(w io.Writer, component string, c *change) {
	fmt.Fprintf(w, "%s %s %d -> %d\n\n", cli.Header("Upgrade"), component, c.from, c.plan.Version)
	fmt.Fprint(w, planList(c.plan).String())
	fmt.Fprintf(w, "\n  %s\n", cli.Dim(engine.Summarize(c.plan.Operations()).String()))
}

func printNoChanges(w io.Writer) {
	fmt.Fprint(w, cli.FormatSuccess("Up to date", "install.xml matches the entities, no changes"))
}
