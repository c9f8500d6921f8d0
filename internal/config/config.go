// Package config loads parsegen settings from a .parsegen.yaml file,
// PARSEGEN_* environment variables and built-in defaults.
package config

import (
	"errors"
	"path/filepath"
	"strings"
)

// Config is the top-level configuration.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Generate GenerateConfig `mapstructure:"generate"`
	Plan     PlanConfig     `mapstructure:"plan"`
	// Schema is a YAML schema file used instead of Go directives.
	Schema string `mapstructure:"schema"`
	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`
}

// GenerateConfig holds code generation settings.
type GenerateConfig struct {
	// Filename is the name of the generated file.
	Filename string `mapstructure:"filename"`
	// Out is the output directory. Empty means the package directory.
	Out string `mapstructure:"out"`
	// Package overrides the package clause of the generated file.
	Package string `mapstructure:"package"`
	// Comments adds a comment explaining each field binding.
	Comments bool `mapstructure:"comments"`
	// Partial writes the types that resolved when others have errors. It has
	// no effect in strict mode.
	Partial bool `mapstructure:"partial"`
}

// PlanConfig holds resolution settings.
type PlanConfig struct {
	// Strict also fails generation on warnings.
	Strict bool `mapstructure:"strict"`
	// WarnUnusedCaptures reports capture groups no field reads.
	WarnUnusedCaptures bool `mapstructure:"warn_unused_captures"`
	// MaxSuggestions caps the names suggested for a misspelled group.
	MaxSuggestions int `mapstructure:"max_suggestions"`
}

// Defaults.
const (
	DefaultFilename           = "parsegen_gen.go"
	DefaultComments           = false
	DefaultPartial            = false
	DefaultStrict             = false
	DefaultWarnUnusedCaptures = true
	DefaultMaxSuggestions     = 3
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidFilename indicates the generated file name is not a plain .go file name.
	ErrInvalidFilename = errors.New("generate.filename must be a .go file name without directories")
	// ErrInvalidMaxSuggestions indicates a negative suggestion cap.
	ErrInvalidMaxSuggestions = errors.New("plan.max_suggestions must be non-negative")
	// ErrTestFilename indicates the generated file would be compiled only in tests.
	ErrTestFilename = errors.New("generate.filename must not end in _test.go")
)

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	name := c.Generate.Filename

	if name == "" || filepath.Base(name) != name || filepath.Ext(name) != ".go" {
		return ErrInvalidFilename
	}

	if strings.HasSuffix(name, "_test.go") {
		return ErrTestFilename
	}

	if c.Plan.MaxSuggestions < 0 {
		return ErrInvalidMaxSuggestions
	}

	return nil
}
