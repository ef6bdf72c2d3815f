package skills

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// SkillFileName is the manifest file every skill directory must contain.
const SkillFileName = "SKILL.md"

// Discovery handles skill discovery from configured directories
type Discovery struct {
	skillDirs []string
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithSkillDirs sets custom skill directories
func WithSkillDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		d.skillDirs = dirs
		return nil
	}
}

// WithDefaultDirs initializes the default skill directories, repo-local
// before user-global so local skills shadow global ones of the same name.
func WithDefaultDirs() Option {
	return func(d *Discovery) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		d.skillDirs = []string{
			filepath.Join(".", ".dataskills", "skills"),
			filepath.Join(homeDir, ".dataskills", "skills"),
		}
		return nil
	}
}

// NewDiscovery creates a new skill discovery instance
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		opts = []Option{WithDefaultDirs()}
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// DiscoverSkills finds all available skills from configured directories.
// Skills that fail to load are skipped; use LintDir to surface load errors.
func (d *Discovery) DiscoverSkills() (map[string]*Skill, error) {
	skills := make(map[string]*Skill)

	for _, dir := range d.skillDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			entryPath := filepath.Join(dir, entry.Name())

			// os.Stat so symlinked skill directories are followed
			info, err := os.Stat(entryPath)
			if err != nil || !info.IsDir() {
				continue
			}

			skill, err := LoadSkill(entryPath)
			if err != nil {
				continue
			}

			if _, exists := skills[skill.Name]; !exists {
				skills[skill.Name] = skill
			}
		}
	}

	return skills, nil
}

// GetSkill returns a specific skill by name
func (d *Discovery) GetSkill(name string) (*Skill, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	skill, exists := skills[name]
	if !exists {
		return nil, errors.Errorf("skill '%s' not found", name)
	}

	return skill, nil
}

// ListSkillNames returns the names of all available skills
func (d *Discovery) ListSkillNames() ([]string, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}

	return names, nil
}

// LoadSkill loads a single skill from its directory
func LoadSkill(dir string) (*Skill, error) {
	path := filepath.Join(dir, SkillFileName)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	var m Metadata
	if err := mapstructure.WeakDecode(metaData, &m); err != nil {
		return nil, errors.Wrap(err, "failed to decode frontmatter")
	}

	if m.Name == "" {
		return nil, errors.New("skill name is required in frontmatter")
	}
	if m.Description == "" {
		return nil, errors.New("skill description is required in frontmatter")
	}

	return &Skill{
		Name:        m.Name,
		Description: m.Description,
		Directory:   dir,
		Content:     extractBodyContent(string(content)),
		Meta:        m,
	}, nil
}

// extractBodyContent removes YAML frontmatter and returns the body
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}

// FilterByAllowlist filters skills by an allowlist of names.
// If the allowlist is empty, all skills are returned.
func FilterByAllowlist(skills map[string]*Skill, allowed []string) map[string]*Skill {
	if len(allowed) == 0 {
		return skills
	}

	filtered := make(map[string]*Skill)
	for _, name := range allowed {
		if skill, exists := skills[name]; exists {
			filtered[name] = skill
		}
	}
	return filtered
}
