// Package config loads the optional loader configuration file.
//
// A document is parsed into a generic map, checked against the JSON schema
// generated from entities.Config, decoded over the built-in defaults, and
// finally checked against the struct's validation tags.
package config

import (
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/mosaic-dev/loader/application/validation"
	"github.com/mosaic-dev/loader/domain/entities"
	domainerrors "github.com/mosaic-dev/loader/domain/errors"
	"github.com/mosaic-dev/loader/domain/ports"
	"github.com/mosaic-dev/loader/infrastructure/parser"
)

// FileNames are the configuration files looked up, in order of preference.
var FileNames = []string{"mosaic.yaml", "mosaic.yml", "mosaic.toml"}

// Loader reads configuration from a file system.
type Loader struct {
	fsys      fs.FS
	validator ports.ConfigValidator
	parserFor func(path string) ports.ConfigParser
}

// LoaderOption configures the Loader.
type LoaderOption func(*Loader)

// WithValidator replaces the default schema and struct validator.
func WithValidator(v ports.ConfigValidator) LoaderOption {
	return func(l *Loader) {
		l.validator = v
	}
}

// WithParser forces one parser for every file regardless of extension.
func WithParser(p ports.ConfigParser) LoaderOption {
	return func(l *Loader) {
		l.parserFor = func(string) ports.ConfigParser { return p }
	}
}

// NewLoader returns a loader reading from fsys.
func NewLoader(fsys fs.FS, opts ...LoaderOption) (*Loader, error) {
	l := &Loader{fsys: fsys, parserFor: parser.ForPath}
	for _, opt := range opts {
		opt(l)
	}

	if l.validator == nil {
		v, err := validation.NewConfigValidator()
		if err != nil {
			return nil, err
		}
		l.validator = v
	}
	return l, nil
}

// Find returns the first configuration file present, if any.
func (l *Loader) Find() (string, bool) {
	for _, name := range FileNames {
		if info, err := fs.Stat(l.fsys, name); err == nil && !info.IsDir() {
			return name, true
		}
	}
	return "", false
}

// Load reads the discovered configuration file, or returns the defaults when
// there is none. path is empty when the defaults were used.
func (l *Loader) Load() (cfg entities.Config, path string, err error) {
	path, ok := l.Find()
	if !ok {
		return entities.DefaultConfig(), "", nil
	}
	cfg, err = l.LoadFile(path)
	return cfg, path, err
}

// LoadFile reads and validates one configuration file. Every failure is a
// setup error at the config stage.
func (l *Loader) LoadFile(path string) (entities.Config, error) {
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return entities.Config{}, configError(fmt.Errorf("failed to read %s: %w", path, err))
	}

	doc, err := l.parserFor(path).Parse(data)
	if err != nil {
		return entities.Config{}, configError(fmt.Errorf("%s: %w", path, err))
	}
	return l.Decode(doc)
}

// Decode validates a parsed document and applies it over the defaults. Maps
// such as env are merged with the defaults; lists replace them.
func (l *Loader) Decode(doc map[string]any) (entities.Config, error) {
	res, err := l.validator.ValidateDocument(doc)
	if err != nil {
		return entities.Config{}, configError(err)
	}
	if err := validation.FormatResult(res); err != nil {
		return entities.Config{}, configError(err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return entities.Config{}, configError(fmt.Errorf("failed to encode document: %w", err))
	}
	cfg := entities.DefaultConfig()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return entities.Config{}, configError(fmt.Errorf("failed to decode document: %w", err))
	}

	res, err = l.validator.ValidateConfig(&cfg)
	if err != nil {
		return entities.Config{}, configError(err)
	}
	if err := validation.FormatResult(res); err != nil {
		return entities.Config{}, configError(err)
	}

	if _, err := entities.ParseKey(cfg.QuitKey); err != nil {
		return entities.Config{}, configError(fmt.Errorf("quit_key: %w", err))
	}
	return cfg, nil
}

func configError(err error) error {
	return domainerrors.NewSetupError(domainerrors.StageConfig, err)
}
