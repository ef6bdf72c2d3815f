// Command dataskills manages the dlt skill corpus: discovering, validating
// and scaffolding skill packages, installing dlt through the project's
// Python dependency manager, and opening the pipeline dashboard.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/untitled-data-company/data-skills/pkg/logger"
	"github.com/untitled-data-company/data-skills/pkg/presenter"
)

func init() {
	viper.SetEnvPrefix("DATASKILLS")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.dataskills")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "dataskills",
	Short: "Tooling for the dlt skill corpus",
	Long: `dataskills manages skill packages for LLM coding assistants working with
dlt data pipelines: it discovers and validates SKILL.md packages, installs
dlt with the right extras through your Python dependency manager, scaffolds
.dlt project configuration, and opens the pipeline dashboard.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			presenter.Warning(fmt.Sprintf("Invalid log level %q, using info", viper.GetString("log_level")))
			_ = logger.SetLogLevel("info")
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
		os.Exit(1)
	},
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// commandContext returns the cobra command context, defaulting to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
