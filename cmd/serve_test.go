package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savbot/pkg/action"
	"savbot/pkg/config"
)

func TestBuildCatalogBuiltinsOnly(t *testing.T) {
	catalog, err := buildCatalog(&config.Config{})
	require.NoError(t, err)
	assert.True(t, catalog.Knows(action.CodeKeep))
	assert.True(t, catalog.Knows(action.CodeBack))
	assert.Empty(t, catalog.Custom())
}

func TestBuildCatalogWithPlugins(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "plugins.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{
		"actions": [
			{"code": "NOTES", "caption": "Note", "order": 300, "task": "note_saver", "pattern": "*"}
		]
	}`), 0o644))

	catalog, err := buildCatalog(&config.Config{
		Plugins: config.PluginsConfig{Manifest: manifest},
	})
	require.NoError(t, err)
	assert.True(t, catalog.Knows("NOTES"))
	assert.Len(t, catalog.Custom(), 1)
}

func TestBuildCatalogRejectsDuplicatePluginCode(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "plugins.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{
		"actions": [
			{"code": "KEEP", "caption": "Clash", "order": 300, "task": "t", "pattern": "*"}
		]
	}`), 0o644))

	_, err := buildCatalog(&config.Config{
		Plugins: config.PluginsConfig{Manifest: manifest},
	})
	assert.Error(t, err)
}
