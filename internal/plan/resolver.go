package plan

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"parsegen/internal/diagnostic"
	"parsegen/internal/expr"
	"parsegen/internal/match"
	"parsegen/internal/pattern"
	"parsegen/internal/schema"
)

// Config holds configuration for the resolution process.
type Config struct {
	// StrictMode fails resolution when any type has errors.
	StrictMode bool
	// WarnUnusedCaptures reports capture groups that no field reads.
	WarnUnusedCaptures bool
	// MaxSuggestions is the maximum number of names suggested for an unbound
	// field.
	MaxSuggestions int
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() Config {
	return Config{
		StrictMode:         false,
		WarnUnusedCaptures: true,
		MaxSuggestions:     match.MaxSuggestions,
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for resolution progress.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithPrior adds diagnostics reported before resolution, e.g. by the package
// analyzer. Types with prior errors are left out of the plan.
func WithPrior(diags diagnostic.Diagnostics) Option {
	return func(r *Resolver) {
		r.prior = diags
	}
}

// Resolver performs the resolution pipeline.
type Resolver struct {
	types  schema.TypeResolver
	config Config
	prior  diagnostic.Diagnostics
	logger *slog.Logger
}

// NewResolver creates a new Resolver. types resolves the annotation types of
// construction expressions.
func NewResolver(types schema.TypeResolver, config Config, opts ...Option) *Resolver {
	r := &Resolver{
		types:  types,
		config: config,
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve validates the schema and resolves every type. A type with errors
// is reported and skipped; the others are still planned.
func (r *Resolver) Resolve(s *schema.Schema) (*Plan, error) {
	if s == nil {
		return nil, errors.New("schema is required")
	}

	if r.types == nil {
		r.types = schema.NewNameResolver(s)
	}

	plan := &Plan{Package: s.Package}
	plan.Diagnostics.Merge(r.prior)

	validation := schema.Validate(s)
	plan.Diagnostics.Merge(*validation)

	for _, t := range s.Types {
		if r.prior.ForType(t.Name).HasErrors() || validation.ForType(t.Name).HasErrors() {
			r.logger.Debug("skipping invalid type", "type", t.Name)
			continue
		}

		var diags diagnostic.Diagnostics

		resolved := r.resolveType(t, &diags)
		plan.Diagnostics.Merge(diags)

		if diags.HasErrors() {
			r.logger.Debug("type failed to resolve", "type", t.Name, "errors", len(diags.Errors))
			continue
		}

		r.logger.Debug("resolved type", "type", t.Name, "shape", t.Shape.String())
		plan.Types = append(plan.Types, resolved)
	}

	if r.config.StrictMode && plan.Diagnostics.HasErrors() {
		return plan, errors.New("strict mode: resolution failed with errors")
	}

	return plan, nil
}

func (r *Resolver) resolveType(t *schema.Type, diags *diagnostic.Diagnostics) *ResolvedType {
	out := &ResolvedType{Name: t.Name, Shape: t.Shape, Source: t}

	if t.Shape == schema.ShapeUnion {
		for _, v := range t.Variants {
			pat := r.resolvePattern(v.Pattern, v.Pos, diags, t.Name, v.Name)
			if pat == nil {
				continue
			}

			rv := &ResolvedVariant{Name: v.Name, Pointer: v.Pointer, Shape: v.Shape, Pattern: pat, Source: v}
			rv.Fields = r.resolveFields(v.Fields, pat, diags, t.Name, v.Name)
			out.Variants = append(out.Variants, rv)
		}
	} else {
		out.Pattern = r.resolvePattern(t.Pattern, t.Pos, diags, t.Name, "")
		if out.Pattern != nil {
			out.Fields = r.resolveFields(t.Fields, out.Pattern, diags, t.Name, "")
		}
	}

	out.Imports = imports(out)

	return out
}

func (r *Resolver) resolvePattern(raw, pos string, diags *diagnostic.Diagnostics, typ, variant string) *ResolvedPattern {
	res, err := pattern.Detail(raw)
	if err != nil {
		errorAt(diags, pos, "pattern_invalid", err.Error(), typ, variant)
		return nil
	}

	groups, err := pattern.Groups(res.Pattern)
	if err != nil {
		errorAt(diags, pos, "pattern_invalid", err.Error(), typ, variant)
		return nil
	}

	for _, name := range res.Renamed {
		diags.AddInfo("group_renamed",
			fmt.Sprintf("capture group %s is referenced as %s%s", name, pattern.RepairPrefix, name), typ, variant)
	}

	for _, g := range groups {
		if expr.IsExempt(g.Name) {
			diags.AddWarning("shadowed_capture",
				fmt.Sprintf("capture group %s can only be bound by a field, never referenced by an expression", g.Name),
				typ, variant)
		}
	}

	return &ResolvedPattern{Raw: raw, Normalized: res.Pattern, Renamed: res.Renamed, Groups: groups}
}

// resolveFields resolves the fields of a record, newtype or variant. owner
// is the variant name, or "" for the type itself.
func (r *Resolver) resolveFields(
	fields []*schema.Field,
	pat *ResolvedPattern,
	diags *diagnostic.Diagnostics,
	typ, owner string,
) []*ResolvedField {
	out := make([]*ResolvedField, 0, len(fields))
	used := make(map[string]bool)

	for _, f := range fields {
		var rf *ResolvedField

		switch {
		case f.Skip:
			rf = &ResolvedField{Field: f, Strategy: StrategySkip, Explanation: "skipped"}
		case f.HasConstruct():
			rf = r.resolveConstruct(f, pat, diags, typ)
		default:
			rf = r.bindField(f, pat, diags, typ)
		}

		if rf == nil {
			continue
		}

		if rf.Group != "" {
			used[rf.Group] = true
		}

		if rf.Construct != nil {
			for _, name := range expr.Captures(rf.Construct) {
				used[name] = true
			}
		}

		out = append(out, rf)
	}

	if r.config.WarnUnusedCaptures && !diags.HasErrors() {
		for _, name := range pat.Names() {
			if !used[name] {
				diags.AddWarning("unused_capture", fmt.Sprintf("capture group %s is not used by any field", name), typ, owner)
			}
		}
	}

	return out
}

func (r *Resolver) resolveConstruct(
	f *schema.Field,
	pat *ResolvedPattern,
	diags *diagnostic.Diagnostics,
	typ string,
) *ResolvedField {
	e := f.Construct
	if e == nil {
		parsed, err := expr.Parse(f.With)
		if err != nil {
			exprError(diags, f, typ, err)
			return nil
		}

		e = parsed
	}

	rewritten, err := expr.Rewrite(e, expr.WithCaptures(pat.Names()...))
	if err != nil {
		exprError(diags, f, typ, err)
		return nil
	}

	types, err := inferTypes(r.types, rewritten, f.Type)
	if err != nil {
		errorAt(diags, f.Pos, "expression_type", err.Error(), typ, f.Label())
		return nil
	}

	return &ResolvedField{
		Field:       f,
		Strategy:    StrategyConstruct,
		Construct:   rewritten,
		Types:       types,
		Explanation: "constructed: " + expr.Format(rewritten),
	}
}

func exprError(diags *diagnostic.Diagnostics, f *schema.Field, typ string, err error) {
	code := expr.ErrSyntax.String()

	var suggestions []string

	var xerr *expr.Error
	if errors.As(err, &xerr) {
		code = xerr.Kind.String()

		if xerr.Suggestion != "" {
			suggestions = []string{xerr.Suggestion}
		}
	}

	errorAt(diags, f.Pos, code, err.Error(), typ, f.Label(), suggestions...)
}

// imports collects the import paths of the field types and of every type
// spelled out by the constructs.
func imports(t *ResolvedType) []string {
	var out []string

	add := func(fields []*ResolvedField) {
		for _, f := range fields {
			if f.Strategy == StrategySkip {
				continue
			}

			out = append(out, f.Field.Type.Imports()...)

			for _, ref := range f.Types {
				out = append(out, ref.Imports()...)
			}
		}
	}

	add(t.Fields)

	for _, v := range t.Variants {
		add(v.Fields)
	}

	slices.Sort(out)

	return slices.Compact(out)
}
