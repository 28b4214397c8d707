package parser

import (
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mosaic-dev/loader/domain/ports"
)

// TomlConfigParser implements ConfigParser for TOML.
type TomlConfigParser struct{}

// NewTomlConfigParser creates a new TomlConfigParser.
func NewTomlConfigParser() ports.ConfigParser {
	return &TomlConfigParser{}
}

// Parse decodes TOML bytes into a generic map.
func (p *TomlConfigParser) Parse(data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ForPath picks a parser by file extension. YAML is the default.
func ForPath(path string) ports.ConfigParser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return NewTomlConfigParser()
	default:
		return NewYamlConfigParser()
	}
}
