// Package pydeps detects the Python dependency manager of a project and
// installs dlt packages through it. Detection combines marker files
// (uv.lock, pyproject.toml, poetry.lock, Pipfile, requirements.txt) with a
// probe for the manager binary, so a stray lockfile without the tool
// installed never selects an unusable manager.
package pydeps

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/untitled-data-company/data-skills/pkg/logger"
)

// Manager identifies a supported Python dependency manager.
type Manager string

const (
	ManagerUv     Manager = "uv"
	ManagerPoetry Manager = "poetry"
	ManagerPipenv Manager = "pipenv"
	ManagerPip    Manager = "pip"
)

// Managers lists the supported managers in detection order.
var Managers = []Manager{ManagerUv, ManagerPoetry, ManagerPipenv, ManagerPip}

// ErrNoManager is returned when no supported dependency manager is usable.
var ErrNoManager = errors.New("no supported dependency manager detected")

// ParseManager converts a user-supplied manager name.
func ParseManager(name string) (Manager, error) {
	for _, m := range Managers {
		if string(m) == name {
			return m, nil
		}
	}
	return "", errors.Errorf("unknown dependency manager %q (supported: uv, poetry, pipenv, pip)", name)
}

// Detector detects the dependency manager for a project directory.
type Detector struct {
	dir      string
	lookPath func(string) (string, error)
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithLookPath overrides the binary probe, used in tests.
func WithLookPath(fn func(string) (string, error)) DetectorOption {
	return func(d *Detector) {
		d.lookPath = fn
	}
}

// NewDetector creates a detector for the given project directory.
func NewDetector(dir string, opts ...DetectorOption) *Detector {
	d := &Detector{
		dir:      dir,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the dependency manager for the project. Marker files pick
// candidates in priority order (uv, poetry, pipenv, pip) and each candidate
// is confirmed by locating its binary; unconfirmed candidates fall through
// to the next. ErrNoManager is returned when nothing is usable.
func (d *Detector) Detect(ctx context.Context) (Manager, error) {
	log := logger.G(ctx)

	if d.exists("uv.lock") || d.exists("pyproject.toml") {
		if d.available(ManagerUv) {
			log.WithField("manager", ManagerUv).Debug("detected dependency manager")
			return ManagerUv, nil
		}
	}

	if d.exists("poetry.lock") || d.pyprojectUsesPoetry() {
		if d.available(ManagerPoetry) {
			log.WithField("manager", ManagerPoetry).Debug("detected dependency manager")
			return ManagerPoetry, nil
		}
	}

	if d.exists("Pipfile") {
		if d.available(ManagerPipenv) {
			log.WithField("manager", ManagerPipenv).Debug("detected dependency manager")
			return ManagerPipenv, nil
		}
	}

	if d.available(ManagerPip) {
		log.WithField("manager", ManagerPip).Debug("falling back to pip")
		return ManagerPip, nil
	}

	return "", ErrNoManager
}

func (d *Detector) exists(name string) bool {
	_, err := os.Stat(filepath.Join(d.dir, name))
	return err == nil
}

func (d *Detector) pyprojectUsesPoetry() bool {
	content, err := os.ReadFile(filepath.Join(d.dir, "pyproject.toml"))
	if err != nil {
		return false
	}
	return strings.Contains(string(content), "tool.poetry")
}

// available reports whether the manager's binary is on PATH. pip is probed
// through the python interpreter, matching how it is invoked.
func (d *Detector) available(m Manager) bool {
	binary := string(m)
	if m == ManagerPip {
		binary = pythonBinary
	}
	_, err := d.lookPath(binary)
	return err == nil
}

const pythonBinary = "python3"

// Packages returns the package specs to install for a destination. The
// duckdb destination is bundled with dlt itself and adds no extra; the
// workspace extra enables the dashboard and `dlt pipeline show`.
func Packages(destination string, workspace bool) []string {
	var extras []string
	if destination != "" && destination != "duckdb" {
		extras = append(extras, destination)
	}
	if workspace {
		extras = append(extras, "workspace")
	}

	if len(extras) == 0 {
		return []string{"dlt"}
	}
	return []string{"dlt[" + strings.Join(extras, ",") + "]"}
}

// InstallCommand returns the argv that installs packages with the manager.
func InstallCommand(manager Manager, packages []string) ([]string, error) {
	var argv []string
	switch manager {
	case ManagerUv:
		argv = []string{"uv", "add"}
	case ManagerPip:
		argv = []string{pythonBinary, "-m", "pip", "install"}
	case ManagerPoetry:
		argv = []string{"poetry", "add"}
	case ManagerPipenv:
		argv = []string{"pipenv", "install"}
	default:
		return nil, errors.Errorf("unknown dependency manager %q", manager)
	}
	return append(argv, packages...), nil
}

// Installer installs packages into a project directory.
type Installer struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// Install runs the manager's install command for the given packages with
// stdio passthrough. For uv, the project is initialized first when no
// pyproject.toml exists. The subprocess exit code is preserved in the
// returned error (see ExitCode).
func (in *Installer) Install(ctx context.Context, manager Manager, packages []string) error {
	if manager == ManagerUv {
		if err := in.ensureUvProject(ctx); err != nil {
			return err
		}
	}

	argv, err := InstallCommand(manager, packages)
	if err != nil {
		return err
	}

	logger.G(ctx).WithField("command", strings.Join(argv, " ")).Info("installing packages")
	return in.run(ctx, argv)
}

// ensureUvProject runs `uv init` when the project has no pyproject.toml yet.
func (in *Installer) ensureUvProject(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(in.Dir, "pyproject.toml")); err == nil {
		return nil
	}

	logger.G(ctx).Info("no pyproject.toml found, initializing project with uv init")
	if err := in.run(ctx, []string{"uv", "init"}); err != nil {
		return errors.Wrap(err, "failed to initialize uv project")
	}
	return nil
}

func (in *Installer) run(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = in.Dir
	cmd.Stdout = in.Stdout
	cmd.Stderr = in.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s failed", argv[0])
	}
	return nil
}

// ExitCode extracts the subprocess exit code from an error returned by
// Install. It returns 0 for nil and 1 for errors that carry no exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
