package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/untitled-data-company/data-skills/pkg/logger"
	"github.com/untitled-data-company/data-skills/pkg/presenter"
	"github.com/untitled-data-company/data-skills/pkg/skills"
)

type LintConfig struct {
	Watch    bool
	Debounce time.Duration
}

func NewLintConfig() *LintConfig {
	return &LintConfig{
		Debounce: 500 * time.Millisecond,
	}
}

var lintCmd = &cobra.Command{
	Use:   "lint [skills-dir]",
	Short: "Validate skill packages",
	Long: `Validate every skill package under a skills directory: frontmatter
completeness, naming conventions, link targets and script permissions.
Defaults to ./.dataskills/skills.

Examples:
  dataskills lint
  dataskills lint ./skills
  dataskills lint --watch`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getLintConfigFromFlags(cmd)

		dir := ""
		if len(args) > 0 {
			dir = args[0]
		} else {
			var err error
			dir, err = getSkillsDir(false)
			if err != nil {
				presenter.Error(err, "Failed to determine skills directory")
				os.Exit(1)
			}
		}

		if config.Watch {
			watchLintCmd(cmd, dir, config)
			return
		}

		if !runLint(dir) {
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewLintConfig()
	lintCmd.Flags().Bool("watch", false, "Re-lint whenever the skills directory changes")
	lintCmd.Flags().Duration("debounce", defaults.Debounce, "Delay before re-linting after a change")
	rootCmd.AddCommand(lintCmd)
}

func getLintConfigFromFlags(cmd *cobra.Command) *LintConfig {
	config := NewLintConfig()
	if watch, err := cmd.Flags().GetBool("watch"); err == nil {
		config.Watch = watch
	}
	if debounce, err := cmd.Flags().GetDuration("debounce"); err == nil {
		config.Debounce = debounce
	}
	return config
}

// runLint lints every skill under dir and reports findings. Returns true
// when the corpus is clean.
func runLint(dir string) bool {
	findings, err := skills.LintDir(dir)
	if err != nil {
		presenter.Error(err, "Failed to lint skills")
		return false
	}

	names := make([]string, 0, len(findings))
	for name := range findings {
		names = append(names, name)
	}
	sort.Strings(names)

	clean := true
	for _, name := range names {
		if findings[name] == nil {
			presenter.Success(name)
			continue
		}
		clean = false
		presenter.Error(findings[name], name)
	}

	if len(findings) == 0 {
		presenter.Info("No skills found to lint")
	} else if clean {
		presenter.Info(fmt.Sprintf("%d skill(s) clean", len(findings)))
	}

	return clean
}

// watchLintCmd re-runs the linter whenever the skills tree changes,
// debouncing bursts of events from editors and file copies.
func watchLintCmd(cmd *cobra.Command, dir string, config *LintConfig) {
	ctx := commandContext(cmd)
	log := logger.G(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		presenter.Error(err, "Failed to create file watcher")
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		presenter.Error(err, fmt.Sprintf("Failed to watch %s", dir))
		os.Exit(1)
	}
	// watch skill subdirectories too; new ones are picked up on events
	entries, _ := os.ReadDir(dir)
	for _, entry := range entries {
		if entry.IsDir() {
			_ = watcher.Add(dir + string(os.PathSeparator) + entry.Name())
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	presenter.Info(fmt.Sprintf("Watching %s (Ctrl-C to stop)", dir))
	runLint(dir)

	var timer *time.Timer
	timerCh := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			log.WithField("event", event.String()).Debug("file event")
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(config.Debounce, func() {
				select {
				case timerCh <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("watcher error")
		case <-timerCh:
			presenter.Separator()
			runLint(dir)
		case <-sigCh:
			presenter.Info("Stopping watcher")
			return
		case <-ctx.Done():
			return
		}
	}
}
