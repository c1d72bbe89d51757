package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestMatcher_Layers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "# generated\n*.log\nscratch/\n")
	writeFile(t, filepath.Join(root, FileName), "# drafts are not compiled\nspec/**/draft_*.jsonc\n\n")

	m, err := NewMatcher(root)
	require.NoError(t, err)

	assert.True(t, m.IsIgnored("build.log", false))
	assert.True(t, m.IsIgnored("scratch", true))
	assert.True(t, m.IsIgnored("spec/01_foundation/draft_arm.jsonc", false))
	assert.True(t, m.IsIgnored(filepath.Join(root, "spec", "02_operation", "draft_x.jsonc"), false))
	assert.True(t, m.IsIgnored(".git/config", false))

	assert.False(t, m.IsIgnored("spec/01_foundation/description.jsonc", false))
	assert.False(t, m.IsIgnored(".", true))
}

func TestMatcher_NoIgnoreFiles(t *testing.T) {
	m, err := NewMatcher(t.TempDir())
	require.NoError(t, err)

	assert.False(t, m.IsIgnored("spec/01_foundation/description.jsonc", false))
}

func TestMatcher_OutsideRootNeverIgnored(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "*.jsonc\n")

	m, err := NewMatcher(root)
	require.NoError(t, err)

	assert.False(t, m.IsIgnored(filepath.Join(filepath.Dir(root), "other.jsonc"), false))
}

func TestNilMatcher(t *testing.T) {
	var m *Matcher
	assert.False(t, m.IsIgnored("anything", false))
}

func TestReadIgnoreFile_RejectsOtherNames(t *testing.T) {
	_, err := readIgnoreFile("/etc/passwd")
	assert.Error(t, err)
}
