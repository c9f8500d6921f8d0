package analyze

import (
	"errors"
	"go/ast"
	"go/token"
	"strings"
)

// DirectivePrefix starts every parsegen comment directive.
const DirectivePrefix = "//parsegen:"

// Directive names.
const (
	DirectivePattern = "pattern"
	DirectiveWith    = "with"
	DirectiveVariant = "variant"
)

// Directive is one //parsegen:name arg comment line.
type Directive struct {
	Name string
	Arg  string
	Pos  token.Pos
}

// Directives extracts parsegen directives from comment groups. The raw
// comment list is read because CommentGroup.Text drops directive lines.
func Directives(groups ...*ast.CommentGroup) []Directive {
	var out []Directive

	for _, g := range groups {
		if g == nil {
			continue
		}

		for _, c := range g.List {
			rest, ok := strings.CutPrefix(c.Text, DirectivePrefix)
			if !ok {
				continue
			}

			rest = strings.TrimRight(rest, "\r")
			name, arg, _ := strings.Cut(rest, " ")

			out = append(out, Directive{Name: name, Arg: arg, Pos: c.Slash})
		}
	}

	return out
}

// VariantSpec is a parsed //parsegen:variant directive.
type VariantSpec struct {
	Type    string
	Pointer bool
	Pattern string
}

// ParseVariant parses "[*]Type <pattern>".
func ParseVariant(arg string) (VariantSpec, error) {
	typ, pattern, ok := strings.Cut(strings.TrimLeft(arg, " \t"), " ")
	if typ == "" {
		return VariantSpec{}, errors.New("variant directive needs a type name")
	}

	if !ok {
		return VariantSpec{}, errors.New("variant directive needs a pattern after the type name")
	}

	spec := VariantSpec{Type: typ, Pattern: pattern}
	if name, ptr := strings.CutPrefix(typ, "*"); ptr {
		spec.Type, spec.Pointer = name, true
	}

	if !token.IsIdentifier(spec.Type) {
		return VariantSpec{}, errors.New("variant type " + typ + " is not a type name of this package")
	}

	return spec, nil
}
