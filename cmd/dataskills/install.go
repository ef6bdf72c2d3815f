package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/untitled-data-company/data-skills/pkg/presenter"
	"github.com/untitled-data-company/data-skills/pkg/pydeps"
)

type InstallConfig struct {
	Destination string
	NoWorkspace bool
	Manager     string
	Dir         string
}

func NewInstallConfig() *InstallConfig {
	return &InstallConfig{
		Dir: ".",
	}
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install dlt through the project's Python dependency manager",
	Long: `Detect the project's Python dependency manager (uv, poetry, pipenv or pip)
and install dlt with the extras the project needs. The destination extra is
added for any destination other than duckdb, which dlt bundles; the
workspace extra enables the pipeline dashboard.

Examples:
  dataskills install --destination bigquery
  dataskills install --destination duckdb --no-workspace
  dataskills install --manager pip --destination postgres`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getInstallConfigFromFlags(cmd)
		installPackagesCmd(cmd, config)
	},
}

func init() {
	defaults := NewInstallConfig()
	installCmd.Flags().String("destination", "", "dlt destination (e.g. bigquery, snowflake, duckdb, postgres)")
	installCmd.Flags().Bool("no-workspace", false, "Skip workspace support (dashboard and pipeline show)")
	installCmd.Flags().String("manager", "", "Force a dependency manager (uv, poetry, pipenv, pip)")
	installCmd.Flags().String("dir", defaults.Dir, "Project directory to install into")
	rootCmd.AddCommand(installCmd)
}

func getInstallConfigFromFlags(cmd *cobra.Command) *InstallConfig {
	config := NewInstallConfig()
	if destination, err := cmd.Flags().GetString("destination"); err == nil {
		config.Destination = destination
	}
	if noWorkspace, err := cmd.Flags().GetBool("no-workspace"); err == nil {
		config.NoWorkspace = noWorkspace
	}
	if manager, err := cmd.Flags().GetString("manager"); err == nil {
		config.Manager = manager
	}
	if dir, err := cmd.Flags().GetString("dir"); err == nil {
		config.Dir = dir
	}
	return config
}

func installPackagesCmd(cmd *cobra.Command, config *InstallConfig) {
	ctx := commandContext(cmd)

	manager, err := resolveManager(ctx, config)
	if err != nil {
		presenter.Error(err, "No usable dependency manager")
		os.Exit(1)
	}
	presenter.Info(fmt.Sprintf("Using dependency manager: %s", manager))

	packages := pydeps.Packages(config.Destination, !config.NoWorkspace)
	argv, err := pydeps.InstallCommand(manager, packages)
	if err != nil {
		presenter.Error(err, "Failed to build install command")
		os.Exit(1)
	}
	presenter.Info(fmt.Sprintf("Running: %s", strings.Join(argv, " ")))

	installer := &pydeps.Installer{
		Dir:    config.Dir,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	if err := installer.Install(ctx, manager, packages); err != nil {
		presenter.Error(err, "Failed to install packages")
		os.Exit(pydeps.ExitCode(err))
	}

	presenter.Success(fmt.Sprintf("Installed %s", strings.Join(packages, " ")))
}

// resolveManager picks the dependency manager from the flag, detection, or
// an interactive prompt when nothing is detected.
func resolveManager(ctx context.Context, config *InstallConfig) (pydeps.Manager, error) {
	if config.Manager != "" {
		return pydeps.ParseManager(config.Manager)
	}

	detector := pydeps.NewDetector(config.Dir)
	manager, err := detector.Detect(ctx)
	if err == nil {
		return manager, nil
	}
	if !errors.Is(err, pydeps.ErrNoManager) {
		return "", err
	}

	if presenter.IsQuiet() {
		return "", pydeps.ErrNoManager
	}

	choice := presenter.Prompt("No dependency manager detected. Which would you like to use?",
		"uv", "pip", "poetry", "pipenv")
	if choice == "" {
		return "", pydeps.ErrNoManager
	}
	return pydeps.ParseManager(choice)
}
