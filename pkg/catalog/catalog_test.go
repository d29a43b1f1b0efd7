package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sdejongh/aisync/pkg/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Equal(t, 9, c.Len())

	mappings := c.Mappings()
	assert.Equal(t, ".claude.json", mappings[0].RelativePath)
	assert.Equal(t, "Cline/Rules/", mappings[len(mappings)-1].RelativePath)

	rules, ok := c.Lookup("Cline/Rules/")
	require.True(t, ok)
	assert.True(t, rules.IsDirectory)
	assert.Equal(t, "Documents/Cline/Rules/", rules.WindowsPath())
	assert.Equal(t, models.KeepPreferWindows, rules.KeepMode)

	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}

func TestMappingsReturnsCopy(t *testing.T) {
	c := Default()
	m := c.Mappings()
	m[0].RelativePath = "mutated"

	assert.Equal(t, ".claude.json", c.Mappings()[0].RelativePath)
}

func TestNewRejectsInvalid(t *testing.T) {
	_, err := New([]models.FileMapping{{RelativePath: "", KeepMode: models.KeepBoth}})
	require.Error(t, err)

	_, err = New([]models.FileMapping{
		{RelativePath: "a.json", KeepMode: models.KeepBoth},
		{RelativePath: "a.json", KeepMode: models.KeepPreferLinux},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mappings.yaml")
	content := `mappings:
  - path: .claude/CLAUDE.md
    keep: PREFER_LINUX
    description: Claude instructions
  - path: Cline/Rules/
    windows_path: Documents/Cline/Rules/
    keep: keep_both
    dir: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	m := c.Mappings()
	assert.Equal(t, models.KeepPreferLinux, m[0].KeepMode)
	assert.Equal(t, models.KeepBoth, m[1].KeepMode)
	assert.True(t, m[1].IsDirectory)
	assert.Equal(t, "Documents/Cline/Rules/", m[1].WindowsRelativePath)
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mappings: []\n"), 0644))
		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})

	t.Run("UnknownKeepMode", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mappings:\n  - path: a\n    keep: prefer_remote\n"), 0644))
		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})
}

func TestMarshalRoundTripsThroughLoad(t *testing.T) {
	data, err := yaml.Marshal(Default())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Mappings(), loaded.Mappings())
}

func TestFilter(t *testing.T) {
	cat := Default()

	paths := func(c *Catalog) []string {
		var out []string
		for _, m := range c.Mappings() {
			out = append(out, m.RelativePath)
		}
		return out
	}

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{
			name:    "directory pattern",
			include: []string{".gemini/"},
			want:    []string{".gemini/settings.json", ".gemini/GEMINI.md"},
		},
		{
			name:    "basename glob",
			include: []string{"*.toml", "AGENTS.md"},
			want:    []string{".codex/config.toml", ".codex/AGENTS.md"},
		},
		{
			name:    "directory mapping by its own path",
			include: []string{"Cline/Rules/"},
			want:    []string{"Cline/Rules/"},
		},
		{
			name:    "any depth",
			include: []string{"**/cline_mcp_settings.json"},
			want:    []string{".vscode-server/data/User/globalStorage/saoudrizwan.claude-dev/settings/cline_mcp_settings.json"},
		},
		{
			name:    "path glob with exclude",
			include: []string{".claude/*", ".claude.json"},
			exclude: []string{"agents/"},
			want:    []string{".claude.json", ".claude/CLAUDE.md"},
		},
		{
			name:    "exclude only",
			exclude: []string{"*.md", ".claude/agents/", "Cline/"},
			want: []string{
				".claude.json",
				".gemini/settings.json",
				".codex/config.toml",
				".vscode-server/data/User/globalStorage/saoudrizwan.claude-dev/settings/cline_mcp_settings.json",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cat.Filter(tt.include, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, paths(got))
		})
	}

	all, err := cat.Filter(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, cat.Len(), all.Len())

	_, err = cat.Filter([]string{"[unclosed"}, nil)
	assert.Error(t, err)
}
