package schema

import (
	"strings"

	"parsegen/internal/common"
)

// Kind classifies a field type by the conversion that produces it from
// captured text.
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindInt
	KindUint
	KindFloat
	KindBool
	KindBytes
	KindDuration
	// KindParser is a type with a generated Parse function.
	KindParser
	// KindText implements encoding.TextUnmarshaler.
	KindText
	KindPointer
	KindSlice
	KindArray
	KindTuple
	// KindOther is any other type; it can only be built by an expression.
	KindOther
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindDuration:
		return "duration"
	case KindParser:
		return "parser"
	case KindText:
		return "text"
	case KindPointer:
		return "pointer"
	case KindSlice:
		return "slice"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindOther:
		return "other"
	default:
		return common.UnknownStr
	}
}

// TypeRef is a resolved Go type as seen from the generated package.
type TypeRef struct {
	// Expr is the Go type expression, e.g. "uint8", "*Point", "time.Duration".
	Expr string
	Kind Kind
	// Elem is the element type of pointers, slices and arrays.
	Elem *TypeRef
	// Elems are the element types of a tuple.
	Elems []TypeRef
	// Len is the length of an array.
	Len int
	// Parser is the generated parse function of a KindParser type.
	Parser string
	// Import is the import path Expr needs, if any.
	Import string
}

// String returns the type expression.
func (t TypeRef) String() string {
	return t.Expr
}

// IsZero reports whether the reference is unset.
func (t TypeRef) IsZero() bool {
	return t.Expr == "" && t.Kind == KindUnknown
}

// Scalar reports whether a single capture converts directly to the type.
func (t TypeRef) Scalar() bool {
	switch t.Kind {
	case KindString, KindInt, KindUint, KindFloat, KindBool,
		KindBytes, KindDuration, KindParser, KindText:
		return true
	default:
		return false
	}
}

// Optional reports whether the type is a pointer to a scalar, which is left
// nil when its capture group does not participate in the match.
func (t TypeRef) Optional() bool {
	return t.Kind == KindPointer && t.Elem != nil && t.Elem.Scalar()
}

// Imports returns the import paths needed by the type and its elements.
func (t TypeRef) Imports() []string {
	var out []string

	if t.Import != "" {
		out = append(out, t.Import)
	}

	if t.Elem != nil {
		out = append(out, t.Elem.Imports()...)
	}

	for _, e := range t.Elems {
		out = append(out, e.Imports()...)
	}

	return out
}

// IsNamed reports whether the expression is a (possibly qualified) type name.
func (t TypeRef) IsNamed() bool {
	return t.Expr != "" && !strings.ContainsAny(t.Expr, "*[]")
}
