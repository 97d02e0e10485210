package process

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSources_YAML(t *testing.T) {
	path := writeConfig(t, "tools.yaml", `
tools:
  - command: ./mathtools
  - command: python3
    args: ["weather.py"]
  - command: ""
`)

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, Source{Command: "./mathtools"}, sources[0])
	assert.Equal(t, Source{Command: "python3", Args: []string{"weather.py"}}, sources[1])
}

func TestLoadSources_JSON(t *testing.T) {
	path := writeConfig(t, "tools.json", `{"tools":[{"command":"./catalog","args":["--quiet"]}]}`)

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, Source{Command: "./catalog", Args: []string{"--quiet"}}, sources[0])
}

func TestLoadSources_MissingFileIsEmpty(t *testing.T) {
	sources, err := LoadSources(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestLoadSources_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "tools.yaml", "tools: [whoops")

	_, err := LoadSources(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestPrefixRegexp(t *testing.T) {
	re, err := prefixRegexp("note://{id}")
	require.NoError(t, err)

	assert.True(t, re.MatchString("note://42"))
	assert.True(t, re.MatchString("note://42/comments"))
	assert.False(t, re.MatchString("memo://42"))

	// Literal metacharacters stay literal.
	re, err = prefixRegexp("file://{name}.json")
	require.NoError(t, err)
	assert.True(t, re.MatchString("file://cfg.json"))
	assert.False(t, re.MatchString("file://cfgxjson"))
}
