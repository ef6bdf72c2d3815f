package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/untitled-data-company/data-skills/pkg/pipeline"
	"github.com/untitled-data-company/data-skills/pkg/presenter"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Inspect local dlt pipelines",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var pipelineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local pipeline working directories",
	Long:  `List the pipeline working directories dlt keeps under ~/.dlt/pipelines.`,
	Run: func(cmd *cobra.Command, _ []string) {
		listPipelinesCmd(cmd)
	},
}

func init() {
	pipelineListCmd.Flags().String("pipelines-dir", "", "Override the pipelines directory (default ~/.dlt/pipelines)")
	pipelineCmd.AddCommand(pipelineListCmd)
	rootCmd.AddCommand(pipelineCmd)
}

func listPipelinesCmd(cmd *cobra.Command) {
	dir, _ := cmd.Flags().GetString("pipelines-dir")
	if dir == "" {
		var err error
		dir, err = pipeline.DefaultPipelinesDir()
		if err != nil {
			presenter.Error(err, "Failed to locate pipelines directory")
			os.Exit(1)
		}
	}

	pipelines, err := pipeline.List(dir)
	if err != nil {
		presenter.Error(err, "Failed to list pipelines")
		os.Exit(1)
	}

	if len(pipelines) == 0 {
		presenter.Info("No local pipelines found")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLAST RUN\tDIRECTORY")
	fmt.Fprintln(tw, "----\t--------\t---------")
	for _, p := range pipelines {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Modified.Format("2006-01-02 15:04"), p.Dir)
	}
	tw.Flush()
}
