package pydeps

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLookPath reports only the given binaries as installed.
func fakeLookPath(available ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func touch(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDetect(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		files     map[string]string
		available []string
		want      Manager
		wantErr   error
	}{
		{
			name:      "uv.lock selects uv",
			files:     map[string]string{"uv.lock": ""},
			available: []string{"uv", "python3"},
			want:      ManagerUv,
		},
		{
			name:      "pyproject.toml selects uv",
			files:     map[string]string{"pyproject.toml": "[project]\nname = \"x\"\n"},
			available: []string{"uv"},
			want:      ManagerUv,
		},
		{
			name:      "poetry.lock selects poetry",
			files:     map[string]string{"poetry.lock": ""},
			available: []string{"poetry", "python3"},
			want:      ManagerPoetry,
		},
		{
			name:      "pyproject with tool.poetry selects poetry when uv is absent",
			files:     map[string]string{"pyproject.toml": "[tool.poetry]\nname = \"x\"\n"},
			available: []string{"poetry"},
			want:      ManagerPoetry,
		},
		{
			name:      "Pipfile selects pipenv",
			files:     map[string]string{"Pipfile": ""},
			available: []string{"pipenv", "python3"},
			want:      ManagerPipenv,
		},
		{
			name:      "requirements.txt falls back to pip",
			files:     map[string]string{"requirements.txt": "dlt\n"},
			available: []string{"python3"},
			want:      ManagerPip,
		},
		{
			name:      "bare directory falls back to pip",
			files:     map[string]string{},
			available: []string{"python3"},
			want:      ManagerPip,
		},
		{
			name:      "uv.lock without uv binary falls back to pip",
			files:     map[string]string{"uv.lock": ""},
			available: []string{"python3"},
			want:      ManagerPip,
		},
		{
			name:    "nothing installed",
			files:   map[string]string{"uv.lock": ""},
			wantErr: ErrNoManager,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				touch(t, dir, name, content)
			}

			detector := NewDetector(dir, WithLookPath(fakeLookPath(tt.available...)))
			got, err := detector.Detect(ctx)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseManager(t *testing.T) {
	for _, name := range []string{"uv", "poetry", "pipenv", "pip"} {
		m, err := ParseManager(name)
		require.NoError(t, err)
		assert.Equal(t, Manager(name), m)
	}

	_, err := ParseManager("conda")
	assert.Error(t, err)
}

func TestPackages(t *testing.T) {
	tests := []struct {
		name        string
		destination string
		workspace   bool
		want        []string
	}{
		{"no destination no workspace", "", false, []string{"dlt"}},
		{"workspace only", "", true, []string{"dlt[workspace]"}},
		{"duckdb is bundled", "duckdb", true, []string{"dlt[workspace]"}},
		{"destination with workspace", "bigquery", true, []string{"dlt[bigquery,workspace]"}},
		{"destination without workspace", "snowflake", false, []string{"dlt[snowflake]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Packages(tt.destination, tt.workspace))
		})
	}
}

func TestInstallCommand(t *testing.T) {
	packages := []string{"dlt[bigquery,workspace]"}

	tests := []struct {
		manager Manager
		want    []string
	}{
		{ManagerUv, []string{"uv", "add", "dlt[bigquery,workspace]"}},
		{ManagerPip, []string{"python3", "-m", "pip", "install", "dlt[bigquery,workspace]"}},
		{ManagerPoetry, []string{"poetry", "add", "dlt[bigquery,workspace]"}},
		{ManagerPipenv, []string{"pipenv", "install", "dlt[bigquery,workspace]"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.manager), func(t *testing.T) {
			argv, err := InstallCommand(tt.manager, packages)
			require.NoError(t, err)
			assert.Equal(t, tt.want, argv)
		})
	}

	t.Run("unknown manager", func(t *testing.T) {
		_, err := InstallCommand(Manager("conda"), packages)
		assert.Error(t, err)
	})
}

// installFakeBinary puts an executable shell script named name on PATH and
// returns the path of its invocation log.
func installFakeBinary(t *testing.T, name, script string) string {
	t.Helper()
	binDir := t.TempDir()
	logFile := filepath.Join(binDir, name+".log")

	full := "#!/bin/sh\necho \"$@\" >> " + logFile + "\n" + script + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(binDir, name), []byte(full), 0o755))
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	return logFile
}

func TestInstallPropagatesExitCode(t *testing.T) {
	installFakeBinary(t, "pipenv", "exit 7")

	in := &Installer{Dir: t.TempDir()}
	err := in.Install(context.Background(), ManagerPipenv, []string{"dlt"})

	require.Error(t, err)
	assert.Equal(t, 7, ExitCode(err))
}

func TestInstallInitializesUvProject(t *testing.T) {
	logFile := installFakeBinary(t, "uv", "exit 0")
	projectDir := t.TempDir()

	in := &Installer{Dir: projectDir}
	require.NoError(t, in.Install(context.Background(), ManagerUv, []string{"dlt[workspace]"}))

	log, err := os.ReadFile(logFile)
	require.NoError(t, err)
	calls := strings.Split(strings.TrimSpace(string(log)), "\n")
	require.Len(t, calls, 2)
	assert.Equal(t, "init", calls[0])
	assert.Equal(t, "add dlt[workspace]", calls[1])
}

func TestInstallSkipsUvInitWhenProjectExists(t *testing.T) {
	logFile := installFakeBinary(t, "uv", "exit 0")
	projectDir := t.TempDir()
	touch(t, projectDir, "pyproject.toml", "[project]\nname = \"x\"\n")

	in := &Installer{Dir: projectDir}
	require.NoError(t, in.Install(context.Background(), ManagerUv, []string{"dlt"}))

	log, err := os.ReadFile(logFile)
	require.NoError(t, err)
	calls := strings.Split(strings.TrimSpace(string(log)), "\n")
	require.Len(t, calls, 1)
	assert.Equal(t, "add dlt", calls[0])
}

func TestExitCode(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, 0, ExitCode(nil))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, 1, ExitCode(errors.New("boom")))
	})

	t.Run("wrapped exit error", func(t *testing.T) {
		err := exec.Command("sh", "-c", "exit 3").Run()
		require.Error(t, err)
		assert.Equal(t, 3, ExitCode(errors.Wrap(err, "install failed")))
	})
}
