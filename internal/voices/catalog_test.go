package voices

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "voices.yaml", `voices:
  - id: 11labs-Adrian
    name: Adrian
    provider: elevenlabs
    gender: male
  - id: 11labs-Kate
    name: Kate
    provider: elevenlabs
    gender: female
    accent: british
`)

	catalog := NewCatalog()
	require.NoError(t, catalog.LoadFromFile(filepath.Join(dir, "voices.yaml")))

	assert.Len(t, catalog.List(), 2)

	adrian := catalog.Get("11labs-Adrian")
	require.NotNil(t, adrian)
	assert.Equal(t, "Adrian", adrian.Name)
	assert.Equal(t, "elevenlabs", adrian.Provider)

	kate := catalog.Get("11labs-Kate")
	require.NotNil(t, kate)
	assert.Equal(t, "british", kate.Accent)

	assert.Nil(t, catalog.Get("missing"))
}

func TestLoadFromFileMissingID(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "voices.yaml", `voices:
  - name: Nameless
    provider: elevenlabs
`)

	catalog := NewCatalog()
	err := catalog.LoadFromFile(filepath.Join(dir, "voices.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "voice id is required")
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "voices.yaml", "voices: [unclosed")

	catalog := NewCatalog()
	require.Error(t, catalog.LoadFromFile(filepath.Join(dir, "voices.yaml")))
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "elevenlabs.yaml", `voices:
  - id: 11labs-Adrian
    name: Adrian
    provider: elevenlabs
`)
	writeCatalog(t, dir, "openai.yml", `voices:
  - id: openai-Alloy
    name: Alloy
    provider: openai
`)
	// bad files are skipped, not fatal
	writeCatalog(t, dir, "broken.yaml", "voices: [unclosed")

	catalog := NewCatalog()
	require.NoError(t, catalog.LoadFromDir(dir))

	assert.Len(t, catalog.List(), 2)
	assert.NotNil(t, catalog.Get("11labs-Adrian"))
	assert.NotNil(t, catalog.Get("openai-Alloy"))
}

func TestLoadFromDirEmpty(t *testing.T) {
	catalog := NewCatalog()
	require.NoError(t, catalog.LoadFromDir(t.TempDir()))
	assert.Empty(t, catalog.List())
}
