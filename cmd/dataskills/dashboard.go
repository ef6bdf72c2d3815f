package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/untitled-data-company/data-skills/pkg/pipeline"
	"github.com/untitled-data-company/data-skills/pkg/presenter"
	"github.com/untitled-data-company/data-skills/pkg/pydeps"
)

type DashboardConfig struct {
	Wait bool
	Port int
}

func NewDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		Port: 8501,
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard <pipeline-name>",
	Short: "Open the dlt dashboard for a pipeline",
	Long: `Open the dlt dashboard for a pipeline by running
'dlt pipeline <name> show'. Requires dlt with the workspace extra
(install with 'dataskills install').

Examples:
  dataskills dashboard github_events
  dataskills dashboard github_events --wait`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getDashboardConfigFromFlags(cmd)
		openDashboardCmd(cmd, args[0], config)
	},
}

func init() {
	defaults := NewDashboardConfig()
	dashboardCmd.Flags().Bool("wait", false, "Wait for the dashboard to answer before returning")
	dashboardCmd.Flags().Int("port", defaults.Port, "Port the dashboard serves on (used with --wait)")
	rootCmd.AddCommand(dashboardCmd)
}

func getDashboardConfigFromFlags(cmd *cobra.Command) *DashboardConfig {
	config := NewDashboardConfig()
	if wait, err := cmd.Flags().GetBool("wait"); err == nil {
		config.Wait = wait
	}
	if port, err := cmd.Flags().GetInt("port"); err == nil {
		config.Port = port
	}
	return config
}

func openDashboardCmd(cmd *cobra.Command, name string, config *DashboardConfig) {
	ctx := commandContext(cmd)

	if err := pipeline.ValidateName(name); err != nil {
		presenter.Error(err, "Invalid pipeline name")
		os.Exit(1)
	}

	runner := pipeline.NewRunner(os.Stdout, os.Stderr)

	if config.Wait {
		url := fmt.Sprintf("http://localhost:%d", config.Port)
		done := make(chan error, 1)
		go func() {
			done <- runner.Dashboard(ctx, name)
		}()

		if err := pipeline.WaitReady(ctx, url); err != nil {
			presenter.Warning(fmt.Sprintf("Dashboard did not answer at %s", url))
		} else {
			presenter.Success(fmt.Sprintf("Dashboard ready at %s", url))
		}

		if err := <-done; err != nil {
			presenter.Error(err, "Failed to open dashboard")
			os.Exit(pydeps.ExitCode(err))
		}
		return
	}

	if err := runner.Dashboard(ctx, name); err != nil {
		presenter.Error(err, "Failed to open dashboard")
		os.Exit(pydeps.ExitCode(err))
	}
}
