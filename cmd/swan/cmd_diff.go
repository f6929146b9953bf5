package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/swan/internal/phpgen"
)

// diffCmd prints the upgrade step migrate would write, touching no files.
func diffCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [entity...]",
		Short: "Show the upgrade step for the current entities without writing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.project(cmd)
			if err != nil {
				return err
			}
			c, err := p.computeChange(cmd.Context(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.plan.Empty() {
				printNoChanges(out)
				return nil
			}
			fragment, err := phpgen.Render(c.plan)
			if err != nil {
				return err
			}
			printPlan(out, p.component, c)
			fmt.Fprintln(out)
			fmt.Fprint(out, fragment)
			return nil
		},
	}
	cmd.Flags().Bool("drop-missing", false, "Drop tables no entity derives")
	return cmd
}
