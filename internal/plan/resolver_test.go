package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parsegen/internal/diagnostic"
	"parsegen/internal/expr"
	"parsegen/internal/schema"
)

func buildSchema(t *testing.T, src string) *schema.Schema {
	t.Helper()

	f, err := schema.Parse([]byte(src))
	require.NoError(t, err)

	return f.Build("test.yaml")
}

func resolve(t *testing.T, src string) *Plan {
	t.Helper()

	p, err := NewResolver(nil, DefaultConfig()).Resolve(buildSchema(t, src))
	require.NoError(t, err)

	return p
}

func codes(diags []diagnostic.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}

	return out
}

func fieldByName(t *testing.T, fields []*ResolvedField, name string) *ResolvedField {
	t.Helper()

	for _, f := range fields {
		if f.Field.Name == name {
			return f
		}
	}

	t.Fatalf("field %s not planned", name)

	return nil
}

func TestResolve_Record(t *testing.T) {
	p := resolve(t, `
package: shapes
types:
  - name: Rectangle
    pattern: '^#(?P<id>\d+) @ (?P<x>\d+),(?P<y>\d+): (?P<width>\d+)x(?P<height>\d+)$'
    fields:
      - {name: ID, type: int, capture: id}
      - X int
      - Y int
      - {name: Area, type: int, with: "width: int * height: int"}
      - {name: Note, type: string, skip: true}
`)

	require.Empty(t, p.Diagnostics.Errors)
	assert.Empty(t, p.Diagnostics.Warnings)
	assert.Equal(t, "shapes", p.Package)
	require.Len(t, p.Types, 1)

	rect := p.Lookup("Rectangle")
	require.NotNil(t, rect)
	assert.Equal(t, schema.ShapeRecord, rect.Shape)
	assert.Equal(t, []string{"id", "x", "y", "width", "height"}, rect.Pattern.Names())
	require.Len(t, rect.Fields, 5)

	id := fieldByName(t, rect.Fields, "ID")
	assert.Equal(t, StrategyCapture, id.Strategy)
	assert.Equal(t, BindingExplicit, id.Binding)
	assert.Equal(t, "id", id.Group)

	x := fieldByName(t, rect.Fields, "X")
	assert.Equal(t, BindingNormalized, x.Binding)
	assert.Equal(t, "x", x.Group)

	area := fieldByName(t, rect.Fields, "Area")
	assert.Equal(t, StrategyConstruct, area.Strategy)
	assert.Equal(t, "$width:int * $height:int", expr.Format(area.Construct))

	for _, name := range []string{"width", "height"} {
		var found bool

		expr.Inspect(area.Construct, func(e expr.Expr) bool {
			if c, ok := e.(*expr.Capture); ok && c.Name == name {
				ref, ok := area.TypeOf(c)
				require.True(t, ok)
				assert.Equal(t, "int", ref.Expr)

				found = true
			}

			return true
		})
		assert.True(t, found, name)
	}

	assert.Equal(t, StrategySkip, fieldByName(t, rect.Fields, "Note").Strategy)
}

func TestResolve_NewtypeAndUnion(t *testing.T) {
	p := resolve(t, `
package: cmds
types:
  - name: Meters
    pattern: '^(?P<0>\d+)m$'
    newtype: uint32
  - name: Command
    variants:
      - {name: Quit, pattern: '^quit$'}
      - {name: Move, pattern: '^move (?P<0>-?\d+)$', newtype: int}
      - name: Place
        pointer: true
        pattern: '^place (?P<at>\S+)$'
        fields:
          - At string
`)

	require.Empty(t, p.Diagnostics.Errors)
	require.Len(t, p.Types, 2)

	meters := p.Lookup("Meters")
	require.Len(t, meters.Fields, 1)
	assert.Equal(t, BindingPositional, meters.Fields[0].Binding)
	assert.Equal(t, "__0", meters.Fields[0].Group)
	assert.Equal(t, `^(?P<__0>\d+)m$`, meters.Pattern.Normalized)
	assert.Equal(t, []string{"0"}, meters.Pattern.Renamed)
	assert.Contains(t, codes(p.Diagnostics.Infos), "group_renamed")

	cmd := p.Lookup("Command")
	assert.Nil(t, cmd.Pattern)
	require.Len(t, cmd.Variants, 3)
	assert.Equal(t, schema.ShapeUnit, cmd.Variants[0].Shape)
	assert.Equal(t, "__0", cmd.Variants[1].Fields[0].Group)
	assert.Equal(t, "*Place", cmd.Variants[2].Expr())
	assert.Equal(t, BindingNormalized, cmd.Variants[2].Fields[0].Binding)
}

func TestResolve_BindingErrors(t *testing.T) {
	tests := []struct {
		name        string
		fields      string
		pattern     string
		code        string
		suggestions []string
	}{
		{
			name:        "unbound with suggestion",
			pattern:     `^(?P<widht>\d+)$`,
			fields:      "[Width int]",
			code:        "unbound_field",
			suggestions: []string{"widht"},
		},
		{
			name:        "unknown explicit capture",
			pattern:     `^(?P<width>\d+)$`,
			fields:      "[{name: W, type: int, capture: widht}]",
			code:        "unknown_capture",
			suggestions: []string{"width"},
		},
		{
			name:        "ambiguous normalized match",
			pattern:     `^(?P<user_id>\d+) (?P<userId>\d+)$`,
			fields:      "[UserID int]",
			code:        "ambiguous_binding",
			suggestions: []string{"user_id", "userId"},
		},
		{
			name:    "unsupported field type",
			pattern: `^(?P<v>\d+)$`,
			fields:  "\n      - V []int",
			code:    "unsupported_field_type",
		},
		{
			name:    "invalid pattern",
			pattern: `^(?P<v>\d+$`,
			fields:  "[V int]",
			code:    "pattern_invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := resolve(t, "package: p\ntypes:\n  - name: T\n    pattern: '"+tt.pattern+"'\n    fields: "+tt.fields+"\n")

			assert.Empty(t, p.Types)
			require.Len(t, p.Diagnostics.Errors, 1)

			d := p.Diagnostics.Errors[0]
			assert.Equal(t, tt.code, d.Code)
			assert.Equal(t, "T", d.Type)
			assert.Equal(t, tt.suggestions, d.Suggestions)
		})
	}
}

func TestResolve_ExpressionErrors(t *testing.T) {
	tests := []struct {
		name string
		with string
		code string
	}{
		{"syntax", "a +", "expression_syntax"},
		{"unknown capture", "widht * 2", "unknown_capture"},
		{"unsupported", "{ x := a; x }", "expression_unsupported"},
		{"block statement", "{ f(a); width: int }", "expression_unsupported"},
		{"branch statement", `if b == "x" { f(a); 1 } else { 2 }`, "expression_unsupported"},
		{"empty branch", `if b == "x" { } else { 2 }`, "expression_unsupported"},
		{"untyped array", "[a, b]", "expression_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := resolve(t, `
package: p
types:
  - name: T
    pattern: '^(?P<a>\w+) (?P<b>\w+) (?P<width>\d+)$'
    fields:
      - {name: V, type: int, with: '`+tt.with+`'}
`)

			require.Len(t, p.Diagnostics.Errors, 1)
			assert.Equal(t, tt.code, p.Diagnostics.Errors[0].Code)
			assert.Equal(t, "V", p.Diagnostics.Errors[0].Field)
		})
	}
}

func TestResolve_UnknownCaptureSuggestion(t *testing.T) {
	p := resolve(t, `
package: p
types:
  - name: T
    pattern: '^(?P<width>\d+)$'
    fields:
      - {name: V, type: int, with: 'widht * 2'}
`)

	require.Len(t, p.Diagnostics.Errors, 1)
	assert.Equal(t, []string{"width"}, p.Diagnostics.Errors[0].Suggestions)
}

func TestResolve_InfersConstructTypes(t *testing.T) {
	p := resolve(t, `
package: p
types:
  - name: T
    pattern: '^(?P<flag>\w) (?P<points>\d+) (?P<lo>\d+) (?P<hi>\d+) (?P<r>\d+) (?P<g>\d+)$'
    fields:
      - {name: Score, type: int, with: 'if flag == "y" { points } else { 0 }'}
      - {name: Span, type: int, with: '(lo: uint8..hi).Len()'}
      - {name: Color, type: '[2]uint8', with: '[r, g]'}
`)

	require.Empty(t, p.Diagnostics.Errors)
	typ := p.Lookup("T")
	require.NotNil(t, typ)

	typeOf := func(f *ResolvedField, match func(expr.Expr) bool) string {
		var out string

		expr.Inspect(f.Construct, func(e expr.Expr) bool {
			if match(e) {
				ref, ok := f.TypeOf(e)
				require.True(t, ok)

				out = ref.Expr
			}

			return true
		})

		return out
	}

	capture := func(name string) func(expr.Expr) bool {
		return func(e expr.Expr) bool {
			c, ok := e.(*expr.Capture)
			return ok && c.Name == name
		}
	}

	score := fieldByName(t, typ.Fields, "Score")
	assert.Equal(t, "string", typeOf(score, capture("flag")))
	assert.Equal(t, "int", typeOf(score, capture("points")))
	assert.Equal(t, "int", typeOf(score, func(e expr.Expr) bool {
		_, ok := e.(*expr.If)
		return ok
	}))

	span := fieldByName(t, typ.Fields, "Span")
	assert.Equal(t, "uint8", typeOf(span, capture("hi")))
	assert.Equal(t, "uint8", typeOf(span, func(e expr.Expr) bool {
		_, ok := e.(*expr.Range)
		return ok
	}))

	color := fieldByName(t, typ.Fields, "Color")
	assert.Equal(t, "uint8", typeOf(color, capture("r")))
	assert.Equal(t, "[2]uint8", typeOf(color, func(e expr.Expr) bool {
		_, ok := e.(*expr.ArrayLit)
		return ok
	}))
}

func TestResolve_Warnings(t *testing.T) {
	p := resolve(t, `
package: p
types:
  - name: T
    pattern: '^(?P<a>\d+) (?P<unused>\d+) (?P<nil>x)?$'
    fields:
      - A int
`)

	require.Empty(t, p.Diagnostics.Errors)
	assert.Equal(t, []string{"shadowed_capture", "unused_capture", "unused_capture"}, codes(p.Diagnostics.Warnings))
	assert.Len(t, p.Types, 1)
}

func TestResolve_TypesAreIsolated(t *testing.T) {
	p := resolve(t, `
package: p
types:
  - name: Bad
    pattern: '^(?P<a>\d+)$'
    fields: [Missing int]
  - name: NoPattern
    fields: [A int]
  - name: Good
    pattern: '^(?P<a>\d+)$'
    fields: [A int]
`)

	bad := p.Diagnostics.ForType("Bad")
	assert.Equal(t, []string{"unbound_field"}, codes(bad.Errors))
	assert.True(t, p.Diagnostics.ForType("NoPattern").HasErrors())
	assert.False(t, p.Diagnostics.ForType("Good").HasErrors())

	require.Len(t, p.Types, 1)
	assert.Equal(t, "Good", p.Types[0].Name)
}

func TestResolve_PriorDiagnostics(t *testing.T) {
	var prior diagnostic.Diagnostics
	prior.AddError("unknown_variant", "no type Missing", "T", "Missing")

	s := buildSchema(t, "package: p\ntypes:\n  - name: T\n    pattern: '^x$'\n")

	p, err := NewResolver(nil, DefaultConfig(), WithPrior(prior)).Resolve(s)
	require.NoError(t, err)
	assert.Empty(t, p.Types)
	assert.Equal(t, []string{"unknown_variant"}, codes(p.Diagnostics.Errors))
}

func TestResolve_StrictMode(t *testing.T) {
	s := buildSchema(t, "package: p\ntypes:\n  - name: T\n    pattern: '^(?P<a>x)$'\n    fields: [B int]\n")

	config := DefaultConfig()
	config.StrictMode = true

	p, err := NewResolver(nil, config).Resolve(s)
	require.Error(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Diagnostics.HasErrors())

	_, err = NewResolver(nil, DefaultConfig()).Resolve(nil)
	require.Error(t, err)
}

func TestPlan_Imports(t *testing.T) {
	p := resolve(t, `
package: p
types:
  - name: T
    pattern: '^(?P<wait>\S+) (?P<addr>\S+)$'
    fields:
      - Wait time.Duration
      - Addr *netip.Addr
`)

	require.Empty(t, p.Diagnostics.Errors)
	assert.Equal(t, []string{"net/netip", "time"}, p.Imports())
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "capture", StrategyCapture.String())
	assert.Equal(t, "construct", StrategyConstruct.String())
	assert.Equal(t, "skip", StrategySkip.String())
	assert.Equal(t, "positional", BindingPositional.String())
}
