package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hlop3z/swan/internal/ast"
	"github.com/hlop3z/swan/internal/cache"
	"github.com/hlop3z/swan/internal/cli"
	"github.com/hlop3z/swan/internal/git"
	"github.com/hlop3z/swan/internal/lockfile"
	"github.com/hlop3z/swan/internal/patch"
	"github.com/hlop3z/swan/internal/phpgen"
	"github.com/hlop3z/swan/internal/xmlfile"
)

// migrateCmd writes the upgrade step: the block goes into db/upgrade.php,
// the version in version.php is bumped and db/install.xml is rewritten.
func migrateCmd(g *globals) *cobra.Command {
	var dryRun, force bool

	cmd := &cobra.Command{
		Use:   "migrate [entity...]",
		Short: "Write the upgrade step, bump the version and update install.xml",
		Long: `Write the upgrade step for the current entities.

The step is inserted before the final 'return true;' of db/upgrade.php,
$plugin->version in version.php is set to the new version and db/install.xml
is rewritten. Entity names narrow the step to the tables of those entities.`,
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
			if dryRun {
				fmt.Fprint(out, fragment)
				return nil
			}

			if !force {
				if err := git.CheckClean(p.upgradePHP(), p.versionPHP(), p.installXML()); err != nil {
					return err
				}
			}

			// Every edit is computed before anything is written.
			upgrade, err := patch.Prepare(p.upgradePHP(), func(src []byte) ([]byte, error) {
				return patch.SpliceUpgrade(src, fragment)
			})
			if err != nil {
				return err
			}
			version, err := patch.Prepare(p.versionPHP(), func(src []byte) ([]byte, error) {
				return patch.ReplaceVersion(src, c.from, c.plan.Version)
			})
			if err != nil {
				return err
			}
			result := c.result()
			install := patch.Contents(p.installXML(), []byte(xmlfile.Format(result)))
			if err := patch.WriteAll(upgrade, version, install); err != nil {
				return err
			}

			// The files are written; cache and lock failures only warn.
			recordRun(p, c, result)
			if err := lockfile.Write(p.entitiesDir(), lockfile.Path(p.cacheDir())); err != nil {
				slog.Warn("could not write entity lock", "error", err)
			}

			printPlan(out, p.component, c)
			fmt.Fprintln(out)
			fmt.Fprint(out, cli.FormatSuccess("Migrated", fmt.Sprintf("%s to %d", p.component, c.plan.Version)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the upgrade step without writing any file")
	cmd.Flags().BoolVar(&force, "force", false, "Write even when the target files have uncommitted changes")
	cmd.Flags().Bool("drop-missing", false, "Drop tables no entity derives")
	return cmd
}

func recordRun(p *project, c *change, result *ast.Structure) {
	db, err := cache.Open(p.cacheDir())
	if err != nil {
		slog.Warn("could not open run cache", "error", err)
		return
	}
	defer db.Close()

	run := cache.NewRun(c.plan, c.from)
	if err := db.RecordRun(run, result); err != nil {
		slog.Warn("could not record run", "error", err)
		return
	}
	slog.Debug("recorded run", "id", run.ID, "hash", run.RootHash)
}
