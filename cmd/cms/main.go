// Package main is the entry point for the cms CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kaiwen/cms/internal/db"
	"github.com/kaiwen/cms/internal/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	flagData   string
	flagBackup string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:   "cms",
	Short: "cms - an interactive student record manager",
	Long: `cms maintains a student record database with fast ID lookup,
undo/redo, sorted views, and diff-aware saving with a one-generation
backup.

Running cms starts an interactive session. Type commands at the prompt:

  OPEN
  SHOW ALL [SORT BY ID|MARK [ASC|DESC]]
  SHOW SUMMARY [PROGRAMME=<name>]
  INSERT ID=<id> [NAME=<name>] [PROGRAMME=<programme>] [MARK=<mark>]
  UPDATE ID=<id> NAME=... | PROGRAMME=... | MARK=...
  DELETE ID=<id>
  QUERY ID=<id>
  UNDO / REDO
  SAVE / RESTORE
  QUIT

File paths and the database header come from .cmsconfig.yaml, overridable
with flags.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runShell,
}

func init() {
	rootCmd.Flags().StringVar(&flagData, "data", "", "primary database file (default from config)")
	rootCmd.Flags().StringVar(&flagBackup, "backup", "", "backup file (default from config)")
	rootCmd.Flags().StringVar(&flagConfig, "config", storage.DefaultConfigFile, "config file path")

	rootCmd.SetVersionTemplate("cms version {{.Version}}\n")
}

func runShell(cmd *cobra.Command, args []string) error {
	fs := afero.NewOsFs()

	cfg, err := storage.LoadConfig(fs, flagConfig)
	if err != nil {
		return err
	}
	if flagData != "" {
		cfg.DataFile = flagData
	}
	if flagBackup != "" {
		cfg.BackupFile = flagBackup
	}

	session := db.NewSession(fs, cfg)
	sh := newShell(session, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	sh.run()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
