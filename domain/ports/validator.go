package ports

import "github.com/mosaic-dev/loader/domain/entities"

// ConfigValidator validates configuration documents and decoded values.
type ConfigValidator interface {
	// ValidateDocument checks a raw configuration document against the
	// configuration schema.
	ValidateDocument(doc map[string]any) (*entities.ValidationResult, error)

	// ValidateConfig checks a decoded configuration's field constraints.
	ValidateConfig(cfg *entities.Config) (*entities.ValidationResult, error)
}
