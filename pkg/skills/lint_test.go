package skills

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLintCleanSkill(t *testing.T) {
	tmpDir := t.TempDir()
	dir := writeSkill(t, tmpDir, "dlt-skill", `---
name: dlt-skill
description: Build and run dlt pipelines
---

# dlt Skill

See [the reference](references/sources.md) for details.
`)
	refDir := filepath.Join(dir, "references")
	require.NoError(t, os.MkdirAll(refDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(refDir, "sources.md"), []byte("# Sources\n"), 0o644))

	skill, err := LoadSkill(dir)
	require.NoError(t, err)
	assert.NoError(t, Lint(skill))
}

func TestLintFindings(t *testing.T) {
	tests := []struct {
		name    string
		skill   *Skill
		wantMsg string
	}{
		{
			name:    "uppercase name",
			skill:   &Skill{Name: "DLT-Skill", Description: "d"},
			wantMsg: "lowercase",
		},
		{
			name:    "underscore in name",
			skill:   &Skill{Name: "dlt_skill", Description: "d"},
			wantMsg: "lowercase",
		},
		{
			name:    "name too long",
			skill:   &Skill{Name: strings.Repeat("a", 70), Description: "d"},
			wantMsg: "exceeds 64",
		},
		{
			name:    "description too long",
			skill:   &Skill{Name: "ok", Description: strings.Repeat("d", 1100)},
			wantMsg: "exceeds 1024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Lint(tt.skill)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLintNameDirectoryMismatch(t *testing.T) {
	tmpDir := t.TempDir()
	dir := writeSkill(t, tmpDir, "wrong-dir", `---
name: dlt-skill
description: Build and run dlt pipelines
---
body
`)

	skill, err := LoadSkill(dir)
	require.NoError(t, err)

	err = Lint(skill)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `does not match directory "wrong-dir"`)
}

func TestLintBrokenLinks(t *testing.T) {
	tmpDir := t.TempDir()
	dir := writeSkill(t, tmpDir, "dlt-skill", `---
name: dlt-skill
description: Build and run dlt pipelines
---

[missing](references/nope.md)
[escape](../outside.md)
[anchor](#section)
[external](https://dlthub.com/docs)
`)

	skill, err := LoadSkill(dir)
	require.NoError(t, err)

	err = Lint(skill)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"references/nope.md" does not resolve`)
	assert.Contains(t, err.Error(), `"../outside.md" escapes`)
	assert.NotContains(t, err.Error(), "dlthub.com")
	assert.NotContains(t, err.Error(), "#section")
}

func TestLintNonExecutableScript(t *testing.T) {
	tmpDir := t.TempDir()
	dir := writeSkill(t, tmpDir, "dlt-skill", `---
name: dlt-skill
description: Build and run dlt pipelines
---
body
`)
	scriptsDir := filepath.Join(dir, "scripts")
	require.NoError(t, os.MkdirAll(scriptsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scriptsDir, "install.sh"), []byte("#!/bin/sh\n"), 0o644))

	skill, err := LoadSkill(dir)
	require.NoError(t, err)

	err = Lint(skill)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `script "scripts/install.sh" is not executable`)
}

func TestLintDir(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "good-skill", `---
name: good-skill
description: fine
---
body
`)
	writeSkill(t, tmpDir, "broken", "# no frontmatter\n")

	findings, err := LintDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.NoError(t, findings["good-skill"])
	require.Error(t, findings["broken"])
	assert.Contains(t, findings["broken"].Error(), "frontmatter")
}

func TestLintDirMissing(t *testing.T) {
	_, err := LintDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRelativeLinks(t *testing.T) {
	body := `
[a](references/a.md)
[b](scripts/run.sh#usage)
[c](https://example.com/x)
[d](#local)
[e](/absolute/path)
[f](mailto:team@example.com)
`
	assert.Equal(t, []string{"references/a.md", "scripts/run.sh"}, relativeLinks(body))
}
