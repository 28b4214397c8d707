// Package validation checks loader configuration documents in two passes:
// the raw document against the generated JSON schema, then the decoded value
// against its field constraints.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mosaic-dev/loader/application/schema"
	"github.com/mosaic-dev/loader/domain/entities"
	"github.com/mosaic-dev/loader/domain/ports"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const configSchemaURL = "mosaic-config.json"

// ConfigValidator implements ports.ConfigValidator.
type ConfigValidator struct {
	schema   *jsonschema.Schema
	validate *validator.Validate
}

// NewConfigValidator compiles the configuration schema and prepares the
// struct validator.
func NewConfigValidator() (ports.ConfigValidator, error) {
	raw, err := schema.ConfigSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to generate config schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(configSchemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add config schema resource: %w", err)
	}
	sch, err := compiler.Compile(configSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid config schema: %w", err)
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	return &ConfigValidator{schema: sch, validate: validate}, nil
}

// ValidateDocument checks a parsed document against the configuration schema.
func (v *ConfigValidator) ValidateDocument(doc map[string]any) (*entities.ValidationResult, error) {
	result := &entities.ValidationResult{Valid: true}

	// Normalize YAML/TOML scalar types to their JSON equivalents.
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}
	var obj interface{}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}

	if err := v.schema.Validate(obj); err != nil {
		result.Valid = false
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			for _, be := range ve.BasicOutput().Errors {
				if be.Error == "" {
					continue
				}
				result.Errors = append(result.Errors, entities.ValidationError{
					Field:   fieldFromPointer(be.InstanceLocation),
					Message: be.Error,
				})
			}
		}
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   "",
				Message: err.Error(),
			})
		}
	}

	return result, nil
}

// ValidateConfig checks the decoded configuration's validate tags.
func (v *ConfigValidator) ValidateConfig(cfg *entities.Config) (*entities.ValidationResult, error) {
	result := &entities.ValidationResult{Valid: true}

	err := v.validate.Struct(cfg)
	if err == nil {
		return result, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	result.Valid = false
	for _, fe := range fieldErrs {
		msg := fmt.Sprintf("failed %q constraint", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed %q constraint (%s)", fe.Tag(), fe.Param())
		}
		result.Errors = append(result.Errors, entities.ValidationError{
			Field:   fe.Field(),
			Message: msg,
		})
	}
	return result, nil
}

// FormatResult renders a failed result as a single error.
func FormatResult(res *entities.ValidationResult) error {
	if res == nil || res.Valid {
		return nil
	}
	msg := "configuration validation failed:"
	for _, e := range res.Errors {
		field := e.Field
		if field == "" {
			field = "(document)"
		}
		msg += fmt.Sprintf("\n- %s: %s", field, e.Message)
	}
	return errors.New(msg)
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// fieldFromPointer turns a JSON pointer such as "/candidates/0" into
// "candidates[0]".
func fieldFromPointer(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	out := parts[0]
	for _, p := range parts[1:] {
		out += "[" + p + "]"
	}
	return out
}
