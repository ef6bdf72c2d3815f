package skills

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const (
	maxNameLength        = 64
	maxDescriptionLength = 1024
)

var (
	namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	// markdownLink matches [text](target) inline links in the skill body.
	markdownLink = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)\)`)
)

// Lint validates a loaded skill against the corpus conventions. All findings
// are aggregated; a nil return means the skill is clean.
func Lint(skill *Skill) error {
	var result *multierror.Error

	if !namePattern.MatchString(skill.Name) {
		result = multierror.Append(result, errors.Errorf(
			"name %q must be lowercase letters, digits and hyphens", skill.Name))
	}
	if utf8.RuneCountInString(skill.Name) > maxNameLength {
		result = multierror.Append(result, errors.Errorf(
			"name exceeds %d characters", maxNameLength))
	}
	if utf8.RuneCountInString(skill.Description) > maxDescriptionLength {
		result = multierror.Append(result, errors.Errorf(
			"description exceeds %d characters", maxDescriptionLength))
	}

	if skill.Directory != "" {
		if base := filepath.Base(skill.Directory); base != skill.Name {
			result = multierror.Append(result, errors.Errorf(
				"name %q does not match directory %q", skill.Name, base))
		}

		for _, target := range relativeLinks(skill.Content) {
			resolved := filepath.Join(skill.Directory, filepath.FromSlash(target))
			if !strings.HasPrefix(resolved, filepath.Clean(skill.Directory)+string(filepath.Separator)) {
				result = multierror.Append(result, errors.Errorf(
					"link %q escapes the skill directory", target))
				continue
			}
			if _, err := os.Stat(resolved); err != nil {
				result = multierror.Append(result, errors.Errorf(
					"link %q does not resolve to a file", target))
			}
		}

		resources, err := Resources(skill)
		if err != nil {
			result = multierror.Append(result, err)
		}
		for _, r := range resources {
			if strings.HasPrefix(r.Path, "scripts/") && !r.Executable {
				result = multierror.Append(result, errors.Errorf(
					"script %q is not executable", r.Path))
			}
		}
	}

	return result.ErrorOrNil()
}

// LintDir loads and lints every skill directory under dir. The returned map
// is keyed by directory basename; entries are nil for clean skills. Load
// failures (missing or invalid SKILL.md) are reported as findings.
func LintDir(dir string) (map[string]error, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skills directory %s", dir)
	}

	findings := make(map[string]error)
	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())

		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		skill, err := LoadSkill(entryPath)
		if err != nil {
			findings[entry.Name()] = err
			continue
		}

		findings[entry.Name()] = Lint(skill)
	}

	return findings, nil
}

// relativeLinks extracts link targets from the body, skipping absolute URLs
// and in-page anchors.
func relativeLinks(body string) []string {
	var targets []string
	for _, m := range markdownLink.FindAllStringSubmatch(body, -1) {
		target := m[1]
		if strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:") {
			continue
		}
		if strings.HasPrefix(target, "#") || strings.HasPrefix(target, "/") {
			continue
		}
		if idx := strings.IndexByte(target, '#'); idx != -1 {
			target = target[:idx]
		}
		if target != "" {
			targets = append(targets, target)
		}
	}
	return targets
}
