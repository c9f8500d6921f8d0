package plan

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"parsegen/internal/schema"
)

// Prune removes the planned types that read a field through the parser of a
// type missing from the plan, repeating until no planned type does. Each
// removal is reported as a dependency_failed error; the names of the removed
// types are returned in plan order.
//
// A plan resolved with errors can then still be generated: the types that
// remain only call parsers that are generated alongside them.
func (p *Plan) Prune() []string {
	var dropped []string

	for {
		planned := make(map[string]bool, len(p.Types))
		for _, t := range p.Types {
			planned[schema.ParserName(t.Name)] = true
		}

		removed := false

		p.Types = slices.DeleteFunc(p.Types, func(t *ResolvedType) bool {
			field, parser, ok := missingParser(t, planned)
			if !ok {
				return false
			}

			p.Diagnostics.AddError("dependency_failed",
				fmt.Sprintf("%s is not generated because %s has errors", t.Name, parser), t.Name, field)

			dropped = append(dropped, t.Name)
			removed = true

			return true
		})

		if !removed {
			return dropped
		}
	}
}

// missingParser returns the first field of t that needs a generated parser
// outside planned.
func missingParser(t *ResolvedType, planned map[string]bool) (string, string, bool) {
	fields := slices.Clone(t.Fields)
	for _, v := range t.Variants {
		fields = append(fields, v.Fields...)
	}

	for _, f := range fields {
		inferred := slices.SortedFunc(maps.Values(f.Types), func(a, b schema.TypeRef) int {
			return strings.Compare(a.Expr, b.Expr)
		})
		refs := append([]schema.TypeRef{f.Field.Type}, inferred...)

		for _, ref := range refs {
			if parser, ok := unplannedParser(ref, planned); ok {
				return f.Field.Name, parser, true
			}
		}
	}

	return "", "", false
}

func unplannedParser(ref schema.TypeRef, planned map[string]bool) (string, bool) {
	if ref.Kind == schema.KindParser && !planned[ref.Parser] {
		return ref.Parser, true
	}

	if ref.Elem != nil {
		if parser, ok := unplannedParser(*ref.Elem, planned); ok {
			return parser, true
		}
	}

	for _, el := range ref.Elems {
		if parser, ok := unplannedParser(el, planned); ok {
			return parser, true
		}
	}

	return "", false
}
