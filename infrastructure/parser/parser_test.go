package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYamlConfigParser_Parse(t *testing.T) {
	doc, err := NewYamlConfigParser().Parse([]byte(`
candidates:
  - build/app.wasm
quit_key: esc
env:
  TERM: xterm-256color
export_terminal_size: false
`))
	require.NoError(t, err)

	assert.Equal(t, []any{"build/app.wasm"}, doc["candidates"])
	assert.Equal(t, "esc", doc["quit_key"])
	assert.Equal(t, map[string]any{"TERM": "xterm-256color"}, doc["env"])
	assert.Equal(t, false, doc["export_terminal_size"])
}

func TestYamlConfigParser_Empty(t *testing.T) {
	doc, err := NewYamlConfigParser().Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestYamlConfigParser_Invalid(t *testing.T) {
	_, err := NewYamlConfigParser().Parse([]byte("candidates: [unterminated"))
	assert.Error(t, err)
}

func TestTomlConfigParser_Parse(t *testing.T) {
	doc, err := NewTomlConfigParser().Parse([]byte(`
candidates = ["build/app.wasm"]
max_output_size = 4096

[env]
TERM = "xterm"
`))
	require.NoError(t, err)

	assert.Equal(t, []any{"build/app.wasm"}, doc["candidates"])
	assert.Equal(t, int64(4096), doc["max_output_size"])
	assert.Equal(t, map[string]any{"TERM": "xterm"}, doc["env"])
}

func TestTomlConfigParser_Invalid(t *testing.T) {
	_, err := NewTomlConfigParser().Parse([]byte("candidates = ["))
	assert.Error(t, err)
}

func TestForPath(t *testing.T) {
	assert.IsType(t, &TomlConfigParser{}, ForPath("mosaic.TOML"))
	assert.IsType(t, &YamlConfigParser{}, ForPath("mosaic.yaml"))
	assert.IsType(t, &YamlConfigParser{}, ForPath("mosaic.yml"))
}
