package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/untitled-data-company/data-skills/pkg/presenter"
	"github.com/untitled-data-company/data-skills/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		format, _ := cmd.Flags().GetString("format")

		info := version.Get()
		switch format {
		case "json":
			out, err := info.JSON()
			if err != nil {
				presenter.Error(err, "Failed to render version info")
				os.Exit(1)
			}
			fmt.Println(out)
		default:
			fmt.Println(info.String())
		}
	},
}

func init() {
	versionCmd.Flags().String("format", "text", "Output format (text, json)")
	rootCmd.AddCommand(versionCmd)
}
