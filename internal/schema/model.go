package schema

import (
	"strconv"

	"parsegen/internal/common"
	"parsegen/internal/expr"
	"parsegen/internal/pattern"
)

// Shape is the structural kind of a parsed type or variant.
type Shape int

const (
	// ShapeRecord is a struct with named fields.
	ShapeRecord Shape = iota
	// ShapeNewtype is a named non-struct type holding one positional value.
	ShapeNewtype
	// ShapeUnit is a struct without fields.
	ShapeUnit
	// ShapeUnion is a sealed interface whose variants carry their own patterns.
	ShapeUnion
)

// String returns a human-readable shape name.
func (s Shape) String() string {
	switch s {
	case ShapeRecord:
		return "record"
	case ShapeNewtype:
		return "newtype"
	case ShapeUnit:
		return "unit"
	case ShapeUnion:
		return "union"
	default:
		return common.UnknownStr
	}
}

// Schema is the set of types a parser file is generated for.
type Schema struct {
	// Package is the Go package name of the generated file.
	Package string
	// PkgPath is the import path of the package, when known.
	PkgPath string
	// Imports maps package names used in type expressions to import paths.
	Imports map[string]string
	Types   []*Type
}

// Lookup returns the type with the given name, or nil.
func (s *Schema) Lookup(name string) *Type {
	for _, t := range s.Types {
		if t.Name == name {
			return t
		}
	}

	return nil
}

// Names returns the type names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Types))
	for _, t := range s.Types {
		names = append(names, t.Name)
	}

	return names
}

// Type is a type that gets a generated Parse function.
type Type struct {
	Name  string
	Shape Shape
	// Pattern is the raw pattern text. HasPattern distinguishes an empty
	// pattern from a missing one.
	Pattern    string
	HasPattern bool
	// Fields holds the record fields, or the single value of a newtype.
	Fields []*Field
	// Variants holds the alternatives of a union, in declaration order.
	Variants []*Variant
	// Pos is the declaration position ("file.go:12:6"), when known.
	Pos string
}

// Variant is one alternative of a union.
type Variant struct {
	// Name is the Go type implementing the union interface.
	Name string
	// Pointer constructs *Name instead of Name.
	Pointer    bool
	Pattern    string
	HasPattern bool
	// Shape is ShapeRecord, ShapeNewtype or ShapeUnit.
	Shape  Shape
	Fields []*Field
	Pos    string
}

// Expr returns the Go expression of the constructed variant type.
func (v *Variant) Expr() string {
	if v.Pointer {
		return "*" + v.Name
	}

	return v.Name
}

// Field is a record field or the positional value of a newtype.
type Field struct {
	// Name is the Go field name; empty for a positional value.
	Name string
	// Index is the declaration index among the fields of its owner.
	Index int
	Type  TypeRef
	// Capture is an explicit capture group name.
	Capture string
	// Skip leaves the field at its zero value.
	Skip bool
	// With is the construction expression source, if any.
	With string
	// Construct is the parsed construction expression. Front ends may leave
	// it nil and only set With.
	Construct expr.Expr
	Pos       string
}

// Positional reports whether the field has no name.
func (f *Field) Positional() bool {
	return f.Name == ""
}

// Label is the field name, or its index for a positional value.
func (f *Field) Label() string {
	if f.Positional() {
		return strconv.Itoa(f.Index)
	}

	return f.Name
}

// PositionalGroup is the capture group name a positional value binds to by
// default, i.e. the normalized form of (?P<index>...).
func (f *Field) PositionalGroup() string {
	return pattern.RepairPrefix + strconv.Itoa(f.Index)
}

// HasConstruct reports whether the field is computed by an expression.
func (f *Field) HasConstruct() bool {
	return f.With != "" || f.Construct != nil
}
