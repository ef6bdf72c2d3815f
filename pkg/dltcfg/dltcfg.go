// Package dltcfg manages the project-relative .dlt/ configuration layout
// that dlt pipelines read: config.toml for non-secret settings and
// secrets.toml for credentials. It scaffolds destination-specific templates
// and loads the merged view with dlt's precedence (secrets over config).
package dltcfg

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	// Dir is the project-relative configuration directory.
	Dir = ".dlt"
	// ConfigFile holds non-secret settings and is safe to commit.
	ConfigFile = "config.toml"
	// SecretsFile holds credentials and must stay out of version control.
	SecretsFile = "secrets.toml"

	gitignoreEntry = ".dlt/secrets.toml"
)

// Load reads config.toml and secrets.toml under dir/.dlt and returns the
// merged settings, secrets taking precedence. Missing files are not errors.
func Load(dir string) (map[string]any, error) {
	merged := make(map[string]any)

	for _, name := range []string{ConfigFile, SecretsFile} {
		path := filepath.Join(dir, Dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}

		var values map[string]any
		if err := toml.Unmarshal(content, &values); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}
		mergeMaps(merged, values)
	}

	return merged, nil
}

// mergeMaps overlays src onto dst, descending into nested tables.
func mergeMaps(dst, src map[string]any) {
	for key, srcVal := range src {
		if srcMap, ok := srcVal.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				mergeMaps(dstMap, srcMap)
				continue
			}
		}
		dst[key] = srcVal
	}
}

// GitignoreStatus reports what Scaffold did about ignoring secrets.toml.
type GitignoreStatus int

const (
	// GitignoreMissing means no .gitignore exists to update.
	GitignoreMissing GitignoreStatus = iota
	// GitignoreUpdated means the secrets entry was appended.
	GitignoreUpdated
	// GitignoreAlreadyIgnored means the entry was already present.
	GitignoreAlreadyIgnored
)

// ScaffoldResult describes the files Scaffold produced.
type ScaffoldResult struct {
	ConfigPath  string
	SecretsPath string
	Gitignore   GitignoreStatus
}

// Scaffold creates dir/.dlt with a config template and a destination-specific
// secrets template. Existing files are left untouched. The project .gitignore
// is extended to cover secrets.toml when one exists.
func Scaffold(dir, destination string) (*ScaffoldResult, error) {
	cfgDir := filepath.Join(dir, Dir)
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create .dlt directory")
	}

	result := &ScaffoldResult{
		ConfigPath:  filepath.Join(cfgDir, ConfigFile),
		SecretsPath: filepath.Join(cfgDir, SecretsFile),
	}

	if err := writeIfAbsent(result.ConfigPath, configTemplate, 0o644); err != nil {
		return nil, err
	}
	if err := writeIfAbsent(result.SecretsPath, secretsTemplate(destination), 0o600); err != nil {
		return nil, err
	}

	status, err := ensureSecretsIgnored(dir)
	if err != nil {
		return nil, err
	}
	result.Gitignore = status

	return result, nil
}

func writeIfAbsent(path, content string, mode os.FileMode) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// ensureSecretsIgnored appends the secrets entry to an existing .gitignore.
func ensureSecretsIgnored(dir string) (GitignoreStatus, error) {
	path := filepath.Join(dir, ".gitignore")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return GitignoreMissing, nil
		}
		return GitignoreMissing, errors.Wrap(err, "failed to read .gitignore")
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == gitignoreEntry {
			return GitignoreAlreadyIgnored, nil
		}
	}

	entry := gitignoreEntry + "\n"
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		entry = "\n" + entry
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return GitignoreMissing, errors.Wrap(err, "failed to open .gitignore")
	}
	defer f.Close()

	if _, err := f.WriteString(entry); err != nil {
		return GitignoreMissing, errors.Wrap(err, "failed to update .gitignore")
	}
	return GitignoreUpdated, nil
}

const configTemplate = `# dlt project settings. Non-secret values only; safe to commit.

[runtime]
log_level = "WARNING"

# [normalize.data_writer]
# disable_compression = true
`

// secretsTemplate returns the credentials template for a destination.
// Unknown destinations get a generic placeholder section.
func secretsTemplate(destination string) string {
	header := "# dlt credentials. Keep this file out of version control.\n\n"

	switch destination {
	case "", "duckdb":
		return header + "# duckdb needs no credentials; add source secrets here as\n" +
			"# [sources.<source_name>]\n# api_key = \"...\"\n"
	case "bigquery":
		return header + `[destination.bigquery.credentials]
project_id = ""
private_key = ""
client_email = ""
`
	case "snowflake":
		return header + `[destination.snowflake.credentials]
database = ""
username = ""
password = ""
host = ""
warehouse = ""
role = ""
`
	case "postgres":
		return header + `[destination.postgres.credentials]
database = ""
username = ""
password = ""
host = "localhost"
port = 5432
`
	default:
		return header + "[destination." + destination + ".credentials]\n# fill in the credentials for " + destination + "\n"
	}
}
