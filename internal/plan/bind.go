package plan

import (
	"fmt"

	"parsegen/internal/common"
	"parsegen/internal/diagnostic"
	"parsegen/internal/match"
	"parsegen/internal/schema"
)

// bindField picks the capture group a field without an expression is read
// from: an explicit capture name, then a group of the same name, then the
// only group with the same normalized name, then __<index> for a positional
// value.
func (r *Resolver) bindField(
	f *schema.Field,
	pat *ResolvedPattern,
	diags *diagnostic.Diagnostics,
	typ string,
) *ResolvedField {
	names := pat.Names()
	out := &ResolvedField{Field: f, Strategy: StrategyCapture}

	switch {
	case f.Capture != "":
		if !pat.Has(f.Capture) {
			errorAt(diags, f.Pos, "unknown_capture",
				fmt.Sprintf("no capture group named %q", f.Capture), typ, f.Label(),
				match.Suggest(f.Capture, names)...)

			return nil
		}

		out.Group, out.Binding = f.Capture, BindingExplicit
	case f.Positional():
		group := f.PositionalGroup()
		if !pat.Has(group) {
			errorAt(diags, f.Pos, "unbound_field",
				fmt.Sprintf("no capture group (?P<%d>...) for positional value %d", f.Index, f.Index),
				typ, f.Label())

			return nil
		}

		out.Group, out.Binding = group, BindingPositional
	case pat.Has(f.Name):
		out.Group, out.Binding = f.Name, BindingExact
	default:
		candidates := match.Rank(f.Name, names)

		exact := candidates.Exact()
		switch {
		case common.IsSingle(exact):
			out.Group, out.Binding = exact[0].Name, BindingNormalized
		case common.IsEmpty(exact):
			errorAt(diags, f.Pos, "unbound_field",
				fmt.Sprintf("no capture group for field %s", f.Name), typ, f.Label(),
				candidates.Names(match.MinSuggestScore, r.config.MaxSuggestions)...)

			return nil
		default:
			errorAt(diags, f.Pos, "ambiguous_binding",
				fmt.Sprintf("field %s matches several capture groups", f.Name), typ, f.Label(),
				exact.Names(0, 0)...)

			return nil
		}
	}

	if !f.Type.Scalar() && !f.Type.Optional() {
		errorAt(diags, f.Pos, "unsupported_field_type",
			fmt.Sprintf("%s (%s) cannot be converted from a single capture; add a construction expression",
				f.Type.Expr, f.Type.Kind), typ, f.Label())

		return nil
	}

	out.Explanation = fmt.Sprintf("%s binding: group %s -> %s %s", out.Binding, out.Group, f.Label(), f.Type.Expr)

	return out
}

func errorAt(diags *diagnostic.Diagnostics, pos, code, msg, typ, field string, suggestions ...string) {
	diags.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.SeverityError,
		Code:        code,
		Message:     msg,
		Type:        typ,
		Field:       field,
		Pos:         pos,
		Suggestions: suggestions,
	})
}
