package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema_SimpleStruct(t *testing.T) {
	type SimpleConfig struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	}

	schema, err := GenerateSchema(SimpleConfig{})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(schema, &decoded))
	assert.Contains(t, string(schema), "host")
	assert.Contains(t, string(schema), "port")
}

func TestKeyEventSchema(t *testing.T) {
	data, err := KeyEventSchema()
	require.NoError(t, err)

	var decoded struct {
		Type       string                    `json:"type"`
		Required   []string                  `json:"required"`
		Properties map[string]map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "object", decoded.Type)
	assert.Equal(t, []string{"code"}, decoded.Required)
	require.Contains(t, decoded.Properties, "modifiers")
	assert.Equal(t, "array", decoded.Properties["modifiers"]["type"])

	items, ok := decoded.Properties["modifiers"]["items"].(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"shift", "ctrl", "alt"}, items["enum"])

	assert.Contains(t, decoded.Properties["code"]["enum"], "char")
	assert.Contains(t, decoded.Properties["code"]["enum"], "pagedown")
}

func TestConfigSchema_AllFieldsOptional(t *testing.T) {
	data, err := ConfigSchema()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Empty(t, decoded["required"])
	assert.Equal(t, false, decoded["additionalProperties"])

	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	for _, field := range []string{"candidates", "quit_key", "host_namespace", "log_level", "export_terminal_size"} {
		assert.Contains(t, props, field)
	}
}
