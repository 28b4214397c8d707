// Package schema provides JSON schema generation for the loader's wire and
// configuration types.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/mosaic-dev/loader/domain/entities"
)

var modifiersType = reflect.TypeOf(entities.Modifiers(0))

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
		Mapper:         mapDomainTypes,
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// KeyEventSchema returns the schema of one encoded key event line.
func KeyEventSchema() ([]byte, error) {
	return GenerateSchema(entities.KeyEvent{})
}

// ConfigSchema returns the schema of a loader configuration document.
func ConfigSchema() ([]byte, error) {
	return GenerateSchema(entities.Config{})
}

// mapDomainTypes describes types whose JSON form differs from their Go kind.
func mapDomainTypes(t reflect.Type) *jsonschema.Schema {
	if t != modifiersType {
		return nil
	}
	names := entities.Modifiers(entities.ModShift | entities.ModCtrl | entities.ModAlt).Names()
	enum := make([]any, len(names))
	for i, n := range names {
		enum[i] = n
	}
	return &jsonschema.Schema{
		Type:        "array",
		UniqueItems: true,
		Items: &jsonschema.Schema{
			Type: "string",
			Enum: enum,
		},
	}
}
