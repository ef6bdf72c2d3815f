package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/untitled-data-company/data-skills/pkg/dltcfg"
	"github.com/untitled-data-company/data-skills/pkg/presenter"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold .dlt project configuration",
	Long: `Create the project-relative .dlt/ directory with a config.toml template
and a destination-specific secrets.toml template. Existing files are never
overwritten. When the project has a .gitignore, secrets.toml is added to it.

Examples:
  dataskills init
  dataskills init --destination bigquery`,
	Run: func(cmd *cobra.Command, _ []string) {
		destination, _ := cmd.Flags().GetString("destination")
		dir, _ := cmd.Flags().GetString("dir")
		initProjectCmd(dir, destination)
	},
}

func init() {
	initCmd.Flags().String("destination", "duckdb", "dlt destination the secrets template targets")
	initCmd.Flags().String("dir", ".", "Project directory to initialize")
	rootCmd.AddCommand(initCmd)
}

func initProjectCmd(dir, destination string) {
	result, err := dltcfg.Scaffold(dir, destination)
	if err != nil {
		presenter.Error(err, "Failed to scaffold .dlt configuration")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Wrote %s", result.ConfigPath))
	presenter.Success(fmt.Sprintf("Wrote %s", result.SecretsPath))

	switch result.Gitignore {
	case dltcfg.GitignoreUpdated:
		presenter.Success("Added .dlt/secrets.toml to .gitignore")
	case dltcfg.GitignoreAlreadyIgnored:
		presenter.Info(".dlt/secrets.toml already ignored")
	case dltcfg.GitignoreMissing:
		presenter.Warning("No .gitignore found; make sure .dlt/secrets.toml never gets committed")
	}
}
