// Package skills implements the skill-package model used by the dataskills
// corpus. A skill is a directory containing a SKILL.md file with YAML
// frontmatter (name, description and optional metadata) and a Markdown body
// of instructions, plus supporting assets under references/, scripts/ and
// templates/.
package skills

// Skill represents a discovered skill with its metadata
type Skill struct {
	Name        string   // Unique name from frontmatter
	Description string   // Brief description for assistant decision-making
	Directory   string   // Full path to the skill directory
	Content     string   // Full content of SKILL.md (body, not frontmatter)
	Meta        Metadata // Decoded frontmatter
}

// Metadata represents the YAML frontmatter in SKILL.md files
type Metadata struct {
	Name          string   `yaml:"name" mapstructure:"name"`
	Description   string   `yaml:"description" mapstructure:"description"`
	License       string   `yaml:"license,omitempty" mapstructure:"license"`
	Compatibility string   `yaml:"compatibility,omitempty" mapstructure:"compatibility"`
	AllowedTools  []string `yaml:"allowed-tools,omitempty" mapstructure:"allowed-tools"`
}
