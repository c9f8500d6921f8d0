package schema

import (
	"fmt"

	"parsegen/internal/diagnostic"
)

// Validate checks the structural rules of a schema. This is a structural step
// only; patterns and construction expressions are checked by the planner.
// Every diagnostic names its type so that callers can skip just that type.
func Validate(s *Schema) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if s == nil {
		res.AddError("schema_is_nil", "schema is nil", "", "")
		return res
	}

	seen := map[string]struct{}{}

	for _, t := range s.Types {
		if t.Name == "" {
			errorAt(res, t.Pos, "missing_type_name", "type has no name", "", "")
			continue
		}

		if _, ok := seen[t.Name]; ok {
			errorAt(res, t.Pos, "duplicate_type", fmt.Sprintf("duplicate type %q", t.Name), t.Name, "")
			continue
		}

		seen[t.Name] = struct{}{}

		res.Merge(ValidateType(t))
	}

	return res
}

// ValidateType checks a single type.
func ValidateType(t *Type) diagnostic.Diagnostics {
	var res diagnostic.Diagnostics

	if t.Shape == ShapeUnion {
		validateUnion(&res, t)
		return res
	}

	if !t.HasPattern {
		errorAt(&res, t.Pos, "missing_pattern",
			fmt.Sprintf("%s %s has no pattern", t.Shape, t.Name), t.Name, "")
	}

	validateFields(&res, t.Name, t.Shape, t.Fields)

	return res
}

func validateUnion(res *diagnostic.Diagnostics, t *Type) {
	if t.HasPattern {
		errorAt(res, t.Pos, "pattern_on_union",
			fmt.Sprintf("union %s cannot have a pattern; put one on each variant instead", t.Name), t.Name, "")
	}

	if len(t.Variants) == 0 {
		errorAt(res, t.Pos, "empty_union", fmt.Sprintf("union %s has no variants", t.Name), t.Name, "")
		return
	}

	seen := map[string]struct{}{}

	for _, v := range t.Variants {
		if _, ok := seen[v.Name]; ok {
			errorAt(res, v.Pos, "duplicate_variant", fmt.Sprintf("duplicate variant %q", v.Name), t.Name, v.Name)
			continue
		}

		seen[v.Name] = struct{}{}

		if !v.HasPattern {
			errorAt(res, v.Pos, "variant_missing_pattern",
				fmt.Sprintf("variant %s of union %s has no pattern", v.Name, t.Name), t.Name, v.Name)
		}

		if v.Shape == ShapeUnion {
			errorAt(res, v.Pos, "nested_union",
				fmt.Sprintf("variant %s cannot itself be a union", v.Name), t.Name, v.Name)
		}

		validateFields(res, t.Name, v.Shape, v.Fields)
	}
}

func validateFields(res *diagnostic.Diagnostics, typ string, shape Shape, fields []*Field) {
	if shape == ShapeNewtype && len(fields) != 1 {
		errorAt(res, "", "invalid_newtype",
			fmt.Sprintf("newtype %s must hold exactly one value, got %d", typ, len(fields)), typ, "")
	}

	seen := map[string]struct{}{}

	for _, f := range fields {
		label := f.Label()

		if _, ok := seen[label]; ok {
			errorAt(res, f.Pos, "duplicate_field", fmt.Sprintf("duplicate field %q", label), typ, label)
			continue
		}

		seen[label] = struct{}{}

		if f.Skip {
			if f.Capture != "" || f.HasConstruct() {
				errorAt(res, f.Pos, "conflicting_annotations",
					"a skipped field cannot have a capture or an expression", typ, label)
			}

			continue
		}

		if f.Capture != "" && f.HasConstruct() {
			errorAt(res, f.Pos, "conflicting_annotations",
				"a field cannot have both a capture name and an expression", typ, label)
		}

		if f.Type.Kind == KindUnknown {
			errorAt(res, f.Pos, "unknown_type",
				fmt.Sprintf("cannot resolve type %q", f.Type.Expr), typ, label)
		}
	}
}

func errorAt(res *diagnostic.Diagnostics, pos, code, msg, typ, field string) {
	res.Add(diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Code:     code,
		Message:  msg,
		Type:     typ,
		Field:    field,
		Pos:      pos,
	})
}
