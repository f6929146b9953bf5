// Package main provides the swan CLI. swan derives Moodle XMLDB tables from
// persistent entity definitions, keeps db/install.xml in step with them and
// writes the matching db/upgrade.php steps.
//
// Usage:
//
//	swan init                    # Print install.xml derived from the entities
//	swan init -o sql --verify    # Print DDL and check it against SQLite
//	swan diff                    # Show the upgrade step migrate would write
//	swan migrate                 # Patch upgrade.php, version.php and install.xml
//	swan status                  # Compare install.xml with the entities
//	swan history                 # List recorded migrate runs
//	swan watch                   # Re-diff whenever an entity file changes
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/swan/internal/cli"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// globals holds the persistent flags shared by every command.
type globals struct {
	configFile string
	verbose    bool
	noColor    bool
}

// project loads the configuration for cmd and resolves it.
func (g *globals) project(cmd *cobra.Command) (*project, error) {
	explicit := cmd.Flags().Changed("config")
	cfg, err := loadConfig(g.configFile, explicit, cmd.Flags())
	if err != nil {
		return nil, err
	}
	p, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	slog.Debug("resolved project", "component", p.component, "dir", p.dir, "root", p.root)
	return p, nil
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "swan",
		Short:         "Generate Moodle XMLDB schema and upgrade steps from persistent entities",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), g.verbose)
			if g.noColor {
				cli.SetDefault(&cli.Config{Mode: cli.ModePlain, Writer: cmd.OutOrStdout()})
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&g.configFile, "config", "c", DefaultConfigFile, "Path to config file")
	pf.StringP("plugin-dir", "p", ".", "Plugin directory (holds version.php)")
	pf.String("component", "", "Frankenstyle component name (default: read from version.php)")
	pf.String("moodle-root", "", "Moodle root, used to infer the component from the plugin directory")
	pf.String("entities", "classes/persistent", "Entity definition directory, relative to the plugin")
	pf.String("namespace", "", "Only use entities of this namespace")
	pf.String("cache-dir", ".swan", "Run cache directory, relative to the plugin")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Log debug output to stderr")
	pf.BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		initCmd(g),
		diffCmd(g),
		migrateCmd(g),
		statusCmd(g),
		historyCmd(g),
		watchCmd(g),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}
