package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/cache"
	"github.com/hlop3z/swan/internal/cli"
	"github.com/hlop3z/swan/internal/xmlfile"
)

// TimeDisplay is the layout of run times in tables.
const TimeDisplay = "2006-01-02 15:04:05"

// historyCmd lists recorded migrate runs, newest first.
func historyCmd(g *globals) *cobra.Command {
	var limit int
	var all, clear bool
	var show, remove string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded migrate runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.project(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cache.Exists(p.cacheDir()) {
				fmt.Fprintln(out, "No migrate runs recorded.")
				return nil
			}

			db, err := cache.Open(p.cacheDir())
			if err != nil {
				return err
			}
			defer db.Close()

			switch {
			case show != "":
				return showRun(cmd, db, show)
			case remove != "":
				if _, err := findRun(db, remove); err != nil {
					return err
				}
				if err := db.DeleteRun(remove); err != nil {
					return err
				}
				fmt.Fprint(out, cli.FormatSuccess("Deleted", remove))
				return nil
			}

			if clear {
				if err := db.Clear(); err != nil {
					return err
				}
				if err := db.Vacuum(); err != nil {
					return err
				}
				fmt.Fprint(out, cli.FormatSuccess("Cleared", db.Path()))
				return nil
			}

			component := p.component
			if all {
				component = ""
			}
			runs, err := db.Runs(component, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No migrate runs recorded.")
				return nil
			}

			table := cli.NewTable("ID", "COMPONENT", "FROM", "TO", "CHANGES", "HASH", "CREATED")
			for _, r := range runs {
				table.AddRow(
					r.ID,
					r.Component,
					strconv.FormatInt(r.FromVersion, 10),
					strconv.FormatInt(r.ToVersion, 10),
					r.Summary,
					cli.Dim(shortHash(r.RootHash)),
					r.CreatedAt.Local().Format(TimeDisplay),
				)
			}
			fmt.Fprint(out, table.String())

			if stats, err := db.GetStats(); err == nil {
				fmt.Fprintf(out, "\n  %s\n", cli.Dim(fmt.Sprintf("%s for %s in %s",
					cli.FormatCount(stats.Runs, "run", "runs"),
					cli.FormatCount(stats.Components, "component", "components"),
					db.Path())))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&all, "all", false, "Show runs of every component in the cache")
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete every recorded run")
	cmd.Flags().StringVar(&show, "show", "", "Print the install.xml recorded by run `ID`")
	cmd.Flags().StringVar(&remove, "delete", "", "Delete run `ID`")
	return cmd
}

func findRun(db *cache.Cache, id string) (*cache.Run, error) {
	run, err := db.Run(id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, alerr.New(alerr.ErrCacheRead, "no recorded run with this id").
			With("id", id).
			WithHelp("list run ids with 'swan history --all'")
	}
	return run, nil
}

// showRun prints the structure a migrate run wrote to install.xml.
func showRun(cmd *cobra.Command, db *cache.Cache, id string) error {
	run, err := findRun(db, id)
	if err != nil {
		return err
	}
	snapshot, err := db.Snapshot(id)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return alerr.New(alerr.ErrCacheRead, "run has no recorded snapshot").With("id", id)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s -> %s (%s)\n",
		run.Component, strconv.FormatInt(run.FromVersion, 10), strconv.FormatInt(run.ToVersion, 10), run.Summary)
	fmt.Fprint(cmd.OutOrStdout(), xmlfile.Format(snapshot))
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
