package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, parent, dirName, content string) string {
	t.Helper()
	dir := filepath.Join(parent, dirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SkillFileName), []byte(content), 0o644))
	return dir
}

func TestNewDiscovery(t *testing.T) {
	t.Run("with default dirs", func(t *testing.T) {
		discovery, err := NewDiscovery()
		require.NoError(t, err)
		assert.Len(t, discovery.skillDirs, 2)
	})

	t.Run("with custom dirs", func(t *testing.T) {
		customDirs := []string{"/tmp/skills1", "/tmp/skills2"}
		discovery, err := NewDiscovery(WithSkillDirs(customDirs...))
		require.NoError(t, err)
		assert.Equal(t, customDirs, discovery.skillDirs)
	})
}

func TestDiscoverSkills(t *testing.T) {
	tmpDir := t.TempDir()

	dltDir := writeSkill(t, tmpDir, "dlt-skill", `---
name: dlt-skill
description: Build and run dlt pipelines
license: MIT
allowed-tools:
  - bash
  - edit
---

# dlt Skill

## Instructions
Use verified sources where available.
`)

	writeSkill(t, tmpDir, "uv-skill", `---
name: uv-skill
description: Manage Python projects with uv
---

# uv Skill

Some content here.
`)

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	skills, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	assert.Len(t, skills, 2)

	dltSkill, exists := skills["dlt-skill"]
	require.True(t, exists)
	assert.Equal(t, "dlt-skill", dltSkill.Name)
	assert.Equal(t, "Build and run dlt pipelines", dltSkill.Description)
	assert.Equal(t, dltDir, dltSkill.Directory)
	assert.Contains(t, dltSkill.Content, "# dlt Skill")
	assert.NotContains(t, dltSkill.Content, "description:")
	assert.Equal(t, "MIT", dltSkill.Meta.License)
	assert.Equal(t, []string{"bash", "edit"}, dltSkill.Meta.AllowedTools)
}

func TestDiscoverSkillsPrecedence(t *testing.T) {
	localDir := t.TempDir()
	globalDir := t.TempDir()

	writeSkill(t, localDir, "dlt-skill", `---
name: dlt-skill
description: local copy
---
body
`)
	writeSkill(t, globalDir, "dlt-skill", `---
name: dlt-skill
description: global copy
---
body
`)

	discovery, err := NewDiscovery(WithSkillDirs(localDir, globalDir))
	require.NoError(t, err)

	skills, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, "local copy", skills["dlt-skill"].Description)
}

func TestDiscoverSkillsSkipsInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	writeSkill(t, tmpDir, "good", `---
name: good
description: a valid skill
---
body
`)
	writeSkill(t, tmpDir, "no-frontmatter", "# just markdown\n")
	writeSkill(t, tmpDir, "no-name", `---
description: missing name
---
body
`)
	// plain file at the top level is ignored
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "README.md"), []byte("readme"), 0o644))

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	skills, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	assert.Len(t, skills, 1)
	assert.Contains(t, skills, "good")
}

func TestDiscoverSkillsWithSymlinks(t *testing.T) {
	tmpDir := t.TempDir()
	skillsDir := filepath.Join(tmpDir, "skills")
	require.NoError(t, os.MkdirAll(skillsDir, 0o755))

	actualDir := writeSkill(t, tmpDir, "elsewhere/linked-skill", `---
name: linked-skill
description: reached through a symlink
---
body
`)
	require.NoError(t, os.Symlink(actualDir, filepath.Join(skillsDir, "linked-skill")))

	discovery, err := NewDiscovery(WithSkillDirs(skillsDir))
	require.NoError(t, err)

	skills, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	assert.Contains(t, skills, "linked-skill")
}

func TestGetSkill(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "dlt-skill", `---
name: dlt-skill
description: Build and run dlt pipelines
---
body
`)

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	t.Run("existing skill", func(t *testing.T) {
		skill, err := discovery.GetSkill("dlt-skill")
		require.NoError(t, err)
		assert.Equal(t, "dlt-skill", skill.Name)
	})

	t.Run("missing skill", func(t *testing.T) {
		_, err := discovery.GetSkill("nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestListSkillNames(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "a-skill", "---\nname: a-skill\ndescription: a\n---\nbody\n")
	writeSkill(t, tmpDir, "b-skill", "---\nname: b-skill\ndescription: b\n---\nbody\n")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	names, err := discovery.ListSkillNames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a-skill", "b-skill"}, names)
}

func TestFilterByAllowlist(t *testing.T) {
	skills := map[string]*Skill{
		"a": {Name: "a"},
		"b": {Name: "b"},
	}

	t.Run("empty allowlist returns all", func(t *testing.T) {
		assert.Len(t, FilterByAllowlist(skills, nil), 2)
	})

	t.Run("filters to allowed names", func(t *testing.T) {
		filtered := FilterByAllowlist(skills, []string{"b", "missing"})
		assert.Len(t, filtered, 1)
		assert.Contains(t, filtered, "b")
	})
}

func TestExtractBodyContent(t *testing.T) {
	t.Run("strips frontmatter", func(t *testing.T) {
		body := extractBodyContent("---\nname: x\n---\n\n# Title\n")
		assert.Equal(t, "# Title\n", body)
	})

	t.Run("no frontmatter returns content unchanged", func(t *testing.T) {
		assert.Equal(t, "# Title\n", extractBodyContent("# Title\n"))
	})

	t.Run("unterminated frontmatter returns content unchanged", func(t *testing.T) {
		content := "---\nname: x\n# Title\n"
		assert.Equal(t, content, extractBodyContent(content))
	})
}
