package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/cli"
	"github.com/hlop3z/swan/internal/entity"
)

// watchCmd re-runs the diff whenever an entity file or install.xml changes.
func watchCmd(g *globals) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the pending upgrade step whenever an entity file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.project(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, p, cmd.OutOrStdout(), debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "Wait this long after the last change before re-running")
	return cmd
}

// watch reports once, then again after every burst of relevant changes,
// until ctx is done. Errors of a run are printed and watching continues.
func watch(ctx context.Context, p *project, w io.Writer, debounce time.Duration) error {
	dir := p.entitiesDir()
	if _, err := os.Stat(dir); err != nil {
		return alerr.WrapLoad(err, dir).WithHelp("create the entities directory or set 'entities' in swan.yaml")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return alerr.Wrap(alerr.EInternalError, err, "file watcher failed")
	}
	defer watcher.Close()

	if err := addTree(watcher, dir); err != nil {
		return err
	}
	if err := watcher.Add(p.path("db")); err != nil {
		slog.Debug("not watching db directory", "error", err)
	}

	fmt.Fprintf(w, "%s %s\n\n", cli.Header("Watching"), dir)
	report(ctx, p, w)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						slog.Warn("could not watch directory", "dir", event.Name, "error", err)
					}
				}
			}
			if !relevant(event) {
				continue
			}
			slog.Debug("change", "file", event.Name, "op", event.Op.String())
			fire = time.After(debounce)

		case <-fire:
			fire = nil
			fmt.Fprintln(w)
			report(ctx, p, w)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return entity.IsEntityFile(event.Name) || filepath.Base(event.Name) == "install.xml"
}

// addTree watches dir and every non-hidden directory below it.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && d.Name()[0] == '.' {
			return fs.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return alerr.WrapLoad(err, dir)
	}
	return nil
}

// report prints the pending upgrade step, or the error that prevents it.
func report(ctx context.Context, p *project, w io.Writer) {
	c, err := p.computeChange(ctx, nil)
	if err != nil {
		fmt.Fprint(w, cli.FormatError(err))
		return
	}
	if c.plan.Empty() {
		printNoChanges(w)
		return
	}
	printPlan(w, p.component, c)
}
