package schema

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the root of a YAML schema file.
type File struct {
	// Package is the Go package the parsers are generated into.
	Package string `yaml:"package"`

	// Imports maps package names used in type expressions to import paths.
	Imports map[string]string `yaml:"imports,omitempty"`

	Types []TypeEntry `yaml:"types"`
}

// TypeEntry describes one parsed type.
type TypeEntry struct {
	Name string `yaml:"name"`

	// Pattern is required for records, newtypes and units; unions take their
	// patterns from their variants.
	Pattern *string `yaml:"pattern,omitempty"`

	// Newtype is the type of the single positional value of a newtype.
	Newtype string `yaml:"newtype,omitempty"`

	// With computes the newtype value from captures.
	With string `yaml:"with,omitempty"`

	Fields FieldEntries `yaml:"fields,omitempty"`

	Variants []VariantEntry `yaml:"variants,omitempty"`

	line int
}

// VariantEntry is one alternative of a union.
type VariantEntry struct {
	Name    string       `yaml:"name"`
	Pointer bool         `yaml:"pointer,omitempty"`
	Pattern *string      `yaml:"pattern,omitempty"`
	Newtype string       `yaml:"newtype,omitempty"`
	With    string       `yaml:"with,omitempty"`
	Fields  FieldEntries `yaml:"fields,omitempty"`

	line int
}

// FieldEntry describes one record field.
type FieldEntry struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Capture string `yaml:"capture,omitempty"`
	With    string `yaml:"with,omitempty"`
	Skip    bool   `yaml:"skip,omitempty"`

	line int
}

// FieldEntries is a list of fields. Each item is either a mapping or the
// shorthand scalar "Name Type".
type FieldEntries []FieldEntry

// UnmarshalYAML records the line of the entry.
func (t *TypeEntry) UnmarshalYAML(node *yaml.Node) error {
	type plain TypeEntry

	if err := node.Decode((*plain)(t)); err != nil {
		return err
	}

	t.line = node.Line

	return nil
}

// UnmarshalYAML records the line of the entry.
func (v *VariantEntry) UnmarshalYAML(node *yaml.Node) error {
	type plain VariantEntry

	if err := node.Decode((*plain)(v)); err != nil {
		return err
	}

	v.line = node.Line

	return nil
}

// UnmarshalYAML implements custom YAML unmarshaling for FieldEntries.
// Accepts:
//   - Mapping: {name: ID, type: int, capture: id}
//   - Shorthand: "ID int"
func (f *FieldEntries) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a list of fields", node.Line)
	}

	out := make(FieldEntries, 0, len(node.Content))

	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			fe, err := parseFieldShorthand(item.Value)
			if err != nil {
				return fmt.Errorf("line %d: %w", item.Line, err)
			}

			fe.line = item.Line
			out = append(out, fe)

		case yaml.MappingNode:
			var fe FieldEntry

			type plain FieldEntry

			if err := item.Decode((*plain)(&fe)); err != nil {
				return err
			}

			fe.line = item.Line
			out = append(out, fe)

		default:
			return fmt.Errorf("line %d: expected string or map in field list", item.Line)
		}
	}

	*f = out

	return nil
}

// parseFieldShorthand parses "Name Type" into a FieldEntry.
func parseFieldShorthand(s string) (FieldEntry, error) {
	name, typ, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return FieldEntry{}, errors.New(`expected "Name Type"`)
	}

	return FieldEntry{Name: name, Type: strings.TrimSpace(typ)}, nil
}
