package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hlop3z/swan/internal/cache"
	"github.com/hlop3z/swan/internal/cli"
	"github.com/hlop3z/swan/internal/drift"
	"github.com/hlop3z/swan/internal/lockfile"
	"github.com/hlop3z/swan/internal/patch"
	"github.com/hlop3z/swan/internal/xmlfile"
)

// errDrift is returned by status --check when install.xml is out of date.
var errDrift = errors.New("install.xml does not match the entities")

// statusCmd compares install.xml with the structure the entities derive.
func statusCmd(g *globals) *cobra.Command {
	var check, detail, quick bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compare install.xml with the entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.project(cmd)
			if err != nil {
				return err
			}
			version, err := patch.ReadVersionFile(p.versionPHP())
			if err != nil {
				return err
			}
			entities, err := p.loadEntities(cmd.Context())
			if err != nil {
				return err
			}
			derived, err := p.derive(entities, version)
			if err != nil {
				return err
			}
			stored, err := xmlfile.LoadOrEmpty(p.installXML())
			if err != nil {
				return err
			}

			result, err := drift.Detect(derived, stored)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case quick:
				fmt.Fprintln(out, drift.FormatQuickStatus(result.HasDrift, result.ExpectedHash, result.ActualHash))
			case detail:
				fmt.Fprint(out, cli.KeyValue("component", p.component, "version", strconv.FormatInt(version, 10)))
				fmt.Fprintln(out)
				fmt.Fprint(out, drift.FormatResult(result))
			default:
				fmt.Fprint(out, cli.KeyValue("component", p.component, "version", strconv.FormatInt(version, 10)))
				fmt.Fprintln(out)
				printDriftTable(out, drift.Summarize(result))
				printLockStatus(out, p)
				printLastRun(out, p)
			}

			if check && result.HasDrift {
				return errDrift
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Exit with an error when install.xml is out of date")
	cmd.Flags().BoolVar(&detail, "detail", false, "List the differing fields, keys and indexes")
	cmd.Flags().BoolVar(&quick, "quick", false, "Print a one-line status")
	return cmd
}

func printDriftTable(w io.Writer, s *drift.Summary) {
	if len(s.Details) > 0 {
		table := cli.NewTable("TABLE", "STATUS", "FIELDS", "KEYS", "INDEXES")
		for _, d := range s.Details {
			table.AddRow(d.Name, styleStatus(d.Status), counts(d.Fields), counts(d.Keys), counts(d.Indexes))
		}
		fmt.Fprint(w, table.String())
		fmt.Fprintln(w)
	}
	if s.InSync() {
		fmt.Fprint(w, cli.FormatSuccess("In sync", drift.FormatSummary(s)))
		return
	}
	fmt.Fprint(w, cli.FormatWarning(drift.FormatSummary(s)))
	fmt.Fprint(w, cli.FormatHelp("run 'swan diff' to see the upgrade step, 'swan migrate' to write it"))
}

func styleStatus(status string) string {
	switch status {
	case drift.StatusOK:
		return cli.Success(status)
	case drift.StatusMissing:
		return cli.Added(status)
	case drift.StatusExtra:
		return cli.Removed(status)
	default:
		return cli.Changed(status)
	}
}

// counts renders "-1 +2 ~3", leaving out zero counts.
func counts(c drift.Counts) string {
	s := ""
	add := func(mark string, n int) {
		if n == 0 {
			return
		}
		if s != "" {
			s += " "
		}
		s += mark + strconv.Itoa(n)
	}
	add(cli.MarkRemoved, c.Missing)
	add(cli.MarkAdded, c.Extra)
	add(cli.MarkChanged, c.Modified)
	return s
}

func printLockStatus(w io.Writer, p *project) {
	res, err := lockfile.Verify(p.entitiesDir(), lockfile.Path(p.cacheDir()))
	if err != nil {
		slog.Warn("could not verify entity lock", "error", err)
		return
	}
	if !res.LockFileExists {
		fmt.Fprint(w, cli.FormatNote("no migrate has been recorded for these entity files"))
		return
	}
	if res.Valid {
		return
	}
	fmt.Fprint(w, cli.FormatNote("entity files changed since the last migrate:"))
	l := cli.NewList()
	for _, f := range res.NewFiles {
		l.AddAdded(f)
	}
	for _, f := range res.ModifiedFiles {
		l.AddChanged(f)
	}
	for _, f := range res.RemovedFiles {
		l.AddRemoved(f)
	}
	fmt.Fprint(w, l.String())
}

func printLastRun(w io.Writer, p *project) {
	if !cache.Exists(p.cacheDir()) {
		return
	}
	db, err := cache.Open(p.cacheDir())
	if err != nil {
		slog.Warn("could not open run cache", "error", err)
		return
	}
	defer db.Close()

	run, err := db.LastRun(p.component)
	if err != nil {
		slog.Warn("could not read run cache", "error", err)
		return
	}
	if run == nil {
		return
	}
	fmt.Fprint(w, cli.FormatNote(fmt.Sprintf("last migrate %s: %d -> %d, %s",
		run.CreatedAt.Local().Format(TimeDisplay), run.FromVersion, run.ToVersion, run.Summary)))
}
