package plugins

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savbot/pkg/action"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plugins.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `{
		"actions": [
			{
				"code": "NOTES",
				"caption": "Save note",
				"order": 300,
				"task": "note_saver",
				"pattern": "*",
				"timeout_seconds": 30
			},
			{
				"code": "ARCH",
				"caption": "Archive link",
				"order": 400,
				"task": "link_archiver",
				"parse_links": true,
				"allowed_hosts": ["example.com"],
				"instant": true
			}
		]
	}`)

	defs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	notes := defs[0]
	assert.Equal(t, "NOTES", notes.Code)
	assert.Equal(t, action.HandlerCustomTask, notes.Handler)
	assert.Equal(t, "note_saver", notes.TaskName)
	assert.Equal(t, 30*time.Second, notes.Timeout)
	assert.True(t, notes.IsCustom())
	assert.False(t, notes.Instant)

	arch := defs[1]
	assert.True(t, arch.Instant)
	assert.True(t, arch.Matcher.ParseLinks)
	assert.Equal(t, []string{"example.com"}, arch.Matcher.AllowedHosts)
}

func TestLoadRejectsBrokenManifests(t *testing.T) {
	cases := map[string]string{
		"missing code":    `{"actions":[{"caption":"x","order":300,"task":"t","pattern":"*"}]}`,
		"missing caption": `{"actions":[{"code":"A","order":300,"task":"t","pattern":"*"}]}`,
		"missing task":    `{"actions":[{"code":"A","caption":"x","order":300,"pattern":"*"}]}`,
		"builtin order":   `{"actions":[{"code":"A","caption":"x","order":5,"task":"t","pattern":"*"}]}`,
		"no matcher":      `{"actions":[{"code":"A","caption":"x","order":300,"task":"t"}]}`,
		"bad pattern":     `{"actions":[{"code":"A","caption":"x","order":300,"task":"t","pattern":"["}]}`,
		"bad json":        `{"actions":`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeManifest(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
