package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const scaffoldDescription = "Describe what this skill does and when the assistant should use it."

// ValidateName checks a proposed skill name against the corpus conventions.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("skill name is required")
	}
	if !namePattern.MatchString(name) {
		return errors.Errorf("name %q must be lowercase letters, digits and hyphens", name)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return errors.Errorf("name exceeds %d characters", maxNameLength)
	}
	return nil
}

// Scaffold creates a new skill directory under parent with a SKILL.md
// template and empty references/ and scripts/ directories. It refuses to
// touch an existing directory.
func Scaffold(parent, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	dir := filepath.Join(parent, name)
	if _, err := os.Stat(dir); err == nil {
		return "", errors.Errorf("skill directory %s already exists", dir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create skill directory")
	}

	frontmatter, err := yaml.Marshal(Metadata{
		Name:        name,
		Description: scaffoldDescription,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal frontmatter")
	}

	manifest := fmt.Sprintf("---\n%s---\n\n# %s\n\n## Instructions\n\n1. TODO\n", frontmatter, name)
	if err := os.WriteFile(filepath.Join(dir, SkillFileName), []byte(manifest), 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write SKILL.md")
	}

	for _, sub := range []string{"references", "scripts"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return "", errors.Wrapf(err, "failed to create %s directory", sub)
		}
	}

	return dir, nil
}
