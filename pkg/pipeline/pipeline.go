// Package pipeline wraps the external dlt CLI for pipeline-level helpers:
// launching the pipeline dashboard and listing the local pipeline working
// directories dlt keeps under ~/.dlt/pipelines.
package pipeline

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/untitled-data-company/data-skills/pkg/logger"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateName checks a pipeline name before any subprocess is spawned.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("pipeline name is required")
	}
	if !namePattern.MatchString(name) {
		return errors.Errorf("invalid pipeline name %q: only letters, digits, hyphens and underscores are allowed", name)
	}
	return nil
}

// Runner executes dlt CLI commands.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer

	lookPath func(string) (string, error)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLookPath overrides the binary probe, used in tests.
func WithLookPath(fn func(string) (string, error)) RunnerOption {
	return func(r *Runner) {
		r.lookPath = fn
	}
}

// NewRunner creates a Runner writing to the given streams.
func NewRunner(stdout, stderr io.Writer, opts ...RunnerOption) *Runner {
	r := &Runner{
		Stdout:   stdout,
		Stderr:   stderr,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dashboard launches the dlt pipeline dashboard by running
// `dlt pipeline <name> show` with stdio passthrough. The name is validated
// first; the subprocess exit code is preserved in the returned error.
func (r *Runner) Dashboard(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	dltPath, err := r.lookPath("dlt")
	if err != nil {
		return errors.Wrap(err, "dlt CLI not found on PATH (install with `dataskills install`)")
	}

	logger.G(ctx).WithField("pipeline", name).Info("opening pipeline dashboard")

	cmd := exec.CommandContext(ctx, dltPath, "pipeline", name, "show")
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "dlt pipeline %s show failed", name)
	}
	return nil
}

// WaitReady polls the dashboard URL until it answers or the retry budget is
// exhausted. Any HTTP response counts as ready; only connection failures
// are retried.
func WaitReady(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			resp.Body.Close()
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(20),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return errors.Wrapf(err, "dashboard at %s did not become ready", url)
	}
	return nil
}

// Info describes a local pipeline working directory.
type Info struct {
	Name     string
	Dir      string
	Modified time.Time
}

// DefaultPipelinesDir returns the directory where dlt keeps local pipeline
// working state.
func DefaultPipelinesDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(homeDir, ".dlt", "pipelines"), nil
}

// List enumerates pipeline working directories under dir. Only directories
// carrying a state.json are pipelines; anything else is ignored. A missing
// dir yields an empty list, matching a machine dlt has never run on.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read pipelines directory %s", dir)
	}

	var pipelines []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		stateFile := filepath.Join(dir, entry.Name(), "state.json")
		info, err := os.Stat(stateFile)
		if err != nil {
			continue
		}

		pipelines = append(pipelines, Info{
			Name:     entry.Name(),
			Dir:      filepath.Join(dir, entry.Name()),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(pipelines, func(i, j int) bool {
		return pipelines[i].Name < pipelines[j].Name
	})

	return pipelines, nil
}
