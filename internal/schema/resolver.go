package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TypeResolver turns Go type expressions into TypeRefs.
type TypeResolver interface {
	Resolve(typeExpr string) (TypeRef, error)
}

// StructFieldResolver is implemented by resolvers that know the fields of
// struct types. It is used to type the values of struct literals in
// construction expressions.
type StructFieldResolver interface {
	StructFieldType(typeExpr, field string) (TypeRef, bool)
}

// ParsekitPath is the import path of the runtime package used by generated
// code.
const ParsekitPath = "parsegen/parsekit"

// ParserName is the name of the generated parse function for a type.
func ParserName(typeName string) string {
	return "Parse" + typeName
}

var basicKinds = map[string]Kind{
	"string": KindString,
	"bool":   KindBool,
	"int":    KindInt, "int8": KindInt, "int16": KindInt, "int32": KindInt, "int64": KindInt, "rune": KindInt,
	"uint": KindUint, "uint8": KindUint, "uint16": KindUint, "uint32": KindUint, "uint64": KindUint,
	"uintptr": KindUint, "byte": KindUint,
	"float32": KindFloat, "float64": KindFloat,
}

// NameResolver resolves type expressions by name only: predeclared types,
// time.Duration, byte slices, composite types and the types of a schema.
// Any other named type is assumed to implement encoding.TextUnmarshaler.
type NameResolver struct {
	schema *Schema
	// imports maps package names to import paths for qualified names.
	imports map[string]string
}

// NewNameResolver returns a resolver knowing the types and imports of s.
func NewNameResolver(s *Schema) *NameResolver {
	r := &NameResolver{
		schema:  s,
		imports: map[string]string{"time": "time", "netip": "net/netip", "parsekit": ParsekitPath},
	}

	if s != nil {
		for name, path := range s.Imports {
			r.imports[name] = path
		}
	}

	return r
}

// Resolve implements TypeResolver.
func (r *NameResolver) Resolve(typeExpr string) (TypeRef, error) {
	text := strings.TrimSpace(typeExpr)
	if text == "" {
		return TypeRef{}, errors.New("empty type expression")
	}

	switch {
	case strings.HasPrefix(text, "*"):
		elem, err := r.Resolve(text[1:])
		if err != nil {
			return TypeRef{}, err
		}

		return TypeRef{Expr: text, Kind: KindPointer, Elem: &elem}, nil
	case text == "[]byte" || text == "[]uint8":
		return TypeRef{Expr: text, Kind: KindBytes}, nil
	case strings.HasPrefix(text, "[]"):
		elem, err := r.Resolve(text[2:])
		if err != nil {
			return TypeRef{}, err
		}

		return TypeRef{Expr: text, Kind: KindSlice, Elem: &elem}, nil
	case strings.HasPrefix(text, "["):
		return r.array(text)
	}

	if kind, ok := basicKinds[text]; ok {
		return TypeRef{Expr: text, Kind: kind}, nil
	}

	if text == "time.Duration" {
		return TypeRef{Expr: text, Kind: KindDuration, Import: "time"}, nil
	}

	if base, args, ok := splitTypeArgs(text); ok {
		return r.generic(text, base, args)
	}

	if r.schema != nil {
		if t := r.schema.Lookup(text); t != nil {
			return TypeRef{Expr: text, Kind: KindParser, Parser: ParserName(text)}, nil
		}
	}

	if !isTypeName(text) {
		return TypeRef{}, fmt.Errorf("invalid type expression %q", text)
	}

	ref := TypeRef{Expr: text, Kind: KindText}
	if pkg, _, ok := strings.Cut(text, "."); ok {
		ref.Import = r.imports[pkg]
	}

	return ref, nil
}

func (r *NameResolver) array(text string) (TypeRef, error) {
	end := strings.IndexByte(text, ']')
	if end < 0 {
		return TypeRef{}, fmt.Errorf("invalid array type %q", text)
	}

	n, err := strconv.Atoi(text[1:end])
	if err != nil {
		return TypeRef{}, fmt.Errorf("invalid array length in %q: %w", text, err)
	}

	elem, err := r.Resolve(text[end+1:])
	if err != nil {
		return TypeRef{}, err
	}

	return TypeRef{Expr: text, Kind: KindArray, Elem: &elem, Len: n}, nil
}

func (r *NameResolver) generic(text, base string, args []string) (TypeRef, error) {
	if !strings.HasPrefix(base, "parsekit.Tuple") {
		return TypeRef{Expr: text, Kind: KindOther, Import: r.imports[strings.Split(base, ".")[0]]}, nil
	}

	ref := TypeRef{Expr: text, Kind: KindTuple, Import: r.imports["parsekit"]}

	for _, a := range args {
		elem, err := r.Resolve(a)
		if err != nil {
			return TypeRef{}, err
		}

		ref.Elems = append(ref.Elems, elem)
	}

	if want := "parsekit.Tuple" + strconv.Itoa(len(args)); base != want {
		return TypeRef{}, fmt.Errorf("%s takes %d type arguments", base, len(args))
	}

	return ref, nil
}

// StructFieldType implements StructFieldResolver for the record types of
// the schema.
func (r *NameResolver) StructFieldType(typeExpr, field string) (TypeRef, bool) {
	if r.schema == nil {
		return TypeRef{}, false
	}

	t := r.schema.Lookup(strings.TrimPrefix(typeExpr, "*"))
	if t == nil || t.Shape != ShapeRecord {
		return TypeRef{}, false
	}

	for _, f := range t.Fields {
		if f.Name == field {
			return f.Type, true
		}
	}

	return TypeRef{}, false
}

// splitTypeArgs splits "Base[A, B[C]]" into its base and top-level type
// arguments.
func splitTypeArgs(text string) (string, []string, bool) {
	open := strings.IndexByte(text, '[')
	if open <= 0 || !strings.HasSuffix(text, "]") {
		return "", nil, false
	}

	base, inner := text[:open], text[open+1:len(text)-1]

	var (
		args  []string
		depth int
		start int
	)

	for i, c := range inner {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}

	args = append(args, strings.TrimSpace(inner[start:]))

	return base, args, true
}

func isTypeName(text string) bool {
	parts := strings.Split(text, ".")
	if len(parts) > 2 {
		return false
	}

	for _, p := range parts {
		if p == "" {
			return false
		}

		for i, c := range p {
			letter := c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c > 0x7f
			if !letter && (i == 0 || c < '0' || c > '9') {
				return false
			}
		}
	}

	return true
}
