package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("dlt-rest-api"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("Has-Caps"))
	assert.Error(t, ValidateName("under_score"))
	assert.Error(t, ValidateName("-leading"))
}

func TestScaffold(t *testing.T) {
	parent := t.TempDir()

	dir, err := Scaffold(parent, "new-skill")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "new-skill"), dir)

	// scaffolded skill loads and carries the placeholder description
	skill, err := LoadSkill(dir)
	require.NoError(t, err)
	assert.Equal(t, "new-skill", skill.Name)
	assert.Equal(t, scaffoldDescription, skill.Description)

	for _, sub := range []string{"references", "scripts"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestScaffoldRejectsExisting(t *testing.T) {
	parent := t.TempDir()

	_, err := Scaffold(parent, "dup-skill")
	require.NoError(t, err)

	_, err = Scaffold(parent, "dup-skill")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestScaffoldRejectsBadName(t *testing.T) {
	_, err := Scaffold(t.TempDir(), "Bad Name")
	assert.Error(t, err)
}
