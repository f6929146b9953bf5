package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/cli"
	"github.com/hlop3z/swan/internal/patch"
	"github.com/hlop3z/swan/internal/sqlgen"
	"github.com/hlop3z/swan/internal/xmlfile"
)

// initCmd derives the full schema of the plugin at its current version.
func initCmd(g *globals) *cobra.Command {
	var verify, write, force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Derive install.xml (or SQL DDL) from the entity files",
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
			s, err := p.derive(entities, version)
			if err != nil {
				return err
			}

			out, status := cmd.OutOrStdout(), cmd.ErrOrStderr()
			if verify {
				if err := sqlgen.Verify(cmd.Context(), s, p.cfg.Prefix); err != nil {
					return err
				}
				fmt.Fprint(status, cli.FormatSuccess("Verified", cli.FormatCount(len(s.Tables), "table", "tables")+" against SQLite"))
			}

			switch {
			case p.cfg.Output == "sql":
				stmts, err := sqlgen.Generate(s, sqlgen.Options{Dialect: p.cfg.Dialect, Prefix: p.cfg.Prefix})
				if err != nil {
					return err
				}
				for _, stmt := range stmts {
					fmt.Fprintln(out, stmt+";")
				}
			case write:
				path := p.installXML()
				if _, err := os.Stat(path); err == nil && !force {
					return alerr.New(alerr.ErrWrite, "install.xml already exists").
						WithFile(path, 0).
						WithHelp("use 'swan migrate' to upgrade an existing schema, or pass --force to overwrite")
				}
				if err := xmlfile.Save(path, s); err != nil {
					return err
				}
				fmt.Fprint(status, cli.FormatSuccess("Wrote", path))
			default:
				return xmlfile.Write(out, s)
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "xml", "Output format: xml or sql")
	cmd.Flags().String("dialect", "postgres", "SQL dialect for --output sql: postgres or sqlite")
	cmd.Flags().String("prefix", sqlgen.DefaultPrefix, "Table name prefix for --output sql")
	cmd.Flags().BoolVar(&verify, "verify", false, "Create the tables in an in-memory SQLite database first")
	cmd.Flags().BoolVar(&write, "write", false, "Write db/install.xml instead of printing it")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing db/install.xml")
	return cmd
}
