package plan

import (
	"slices"

	"parsegen/internal/common"
	"parsegen/internal/diagnostic"
	"parsegen/internal/expr"
	"parsegen/internal/pattern"
	"parsegen/internal/schema"
)

// Plan is the output of resolution and the input of code generation.
type Plan struct {
	// Package is the Go package name of the generated file.
	Package string
	// Types holds the types that resolved without errors, in declaration order.
	Types []*ResolvedType
	// Diagnostics holds everything reported while resolving, including the
	// reasons for types missing from Types.
	Diagnostics diagnostic.Diagnostics
}

// Imports returns the sorted import paths needed by all planned types.
func (p *Plan) Imports() []string {
	var out []string
	for _, t := range p.Types {
		out = append(out, t.Imports...)
	}

	slices.Sort(out)

	return slices.Compact(out)
}

// Lookup returns the planned type with the given name, or nil.
func (p *Plan) Lookup(name string) *ResolvedType {
	for _, t := range p.Types {
		if t.Name == name {
			return t
		}
	}

	return nil
}

// ResolvedType is a type ready for code generation.
type ResolvedType struct {
	Name  string
	Shape schema.Shape
	// Pattern is nil for unions.
	Pattern *ResolvedPattern
	// Fields holds the record fields or the newtype value.
	Fields   []*ResolvedField
	Variants []*ResolvedVariant
	// Imports are the import paths the generated code for this type needs.
	Imports []string
	// Source is the schema type this was resolved from.
	Source *schema.Type
}

// ResolvedVariant is a union alternative ready for code generation.
type ResolvedVariant struct {
	Name    string
	Pointer bool
	Shape   schema.Shape
	Pattern *ResolvedPattern
	Fields  []*ResolvedField
	Source  *schema.Variant
}

// Expr returns the Go expression of the constructed variant type.
func (v *ResolvedVariant) Expr() string {
	return v.Source.Expr()
}

// ResolvedPattern is a normalized pattern and its capture groups.
type ResolvedPattern struct {
	// Raw is the pattern as written.
	Raw string
	// Normalized is the pattern with group names repaired.
	Normalized string
	// Renamed lists the original names of repaired groups.
	Renamed []string
	Groups  []pattern.Group
}

// Names returns the capture group names in submatch order.
func (p *ResolvedPattern) Names() []string {
	return pattern.Names(p.Groups)
}

// Has reports whether the pattern has a group with the given name.
func (p *ResolvedPattern) Has(name string) bool {
	return slices.Contains(p.Names(), name)
}

// ResolvedField is a field with its value source decided.
type ResolvedField struct {
	Field    *schema.Field
	Strategy Strategy
	// Binding records how Group was chosen (StrategyCapture only).
	Binding Binding
	// Group is the capture group the field is read from (StrategyCapture only).
	Group string
	// Construct is the rewritten expression (StrategyConstruct only).
	Construct expr.Expr
	// Types holds the inferred type of construct nodes whose type the
	// generated code has to spell out: captures, if-expressions, untyped
	// array literals, typed tuples and range bounds.
	Types map[expr.Expr]schema.TypeRef
	// Explanation is a human-readable note on the decision.
	Explanation string
}

// TypeOf returns the inferred type of a construct node.
func (f *ResolvedField) TypeOf(e expr.Expr) (schema.TypeRef, bool) {
	t, ok := f.Types[e]
	return t, ok
}

// Strategy is how a field value is produced.
type Strategy int

const (
	// StrategyCapture converts a single capture group.
	StrategyCapture Strategy = iota
	// StrategyConstruct evaluates a construction expression.
	StrategyConstruct
	// StrategySkip leaves the zero value.
	StrategySkip
)

// String returns a human-readable strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyCapture:
		return "capture"
	case StrategyConstruct:
		return "construct"
	case StrategySkip:
		return "skip"
	default:
		return common.UnknownStr
	}
}

// Binding indicates how a field was matched to a capture group.
type Binding int

const (
	// BindingNone is used by fields that are not read from a group.
	BindingNone Binding = iota
	// BindingExplicit is an explicit capture name from a tag or the schema.
	BindingExplicit
	// BindingExact is a group with the same name as the field.
	BindingExact
	// BindingNormalized is the only group whose normalized name equals the
	// normalized field name.
	BindingNormalized
	// BindingPositional is the __<index> group of a positional value.
	BindingPositional
)

// String returns a human-readable binding name.
func (b Binding) String() string {
	switch b {
	case BindingNone:
		return "none"
	case BindingExplicit:
		return "explicit"
	case BindingExact:
		return "exact"
	case BindingNormalized:
		return "normalized"
	case BindingPositional:
		return "positional"
	default:
		return common.UnknownStr
	}
}
