package analyze

import (
	"go/ast"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parsegen/internal/diagnostic"
	"parsegen/internal/schema"
)

const testPkg = "./testdata/directives"

func loadTestPackage(t *testing.T) *Package {
	t.Helper()

	pkgs, err := NewAnalyzer().LoadPackages(testPkg)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	return pkgs[0]
}

func codes(diags []diagnostic.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}

	return out
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	pkg := loadTestPackage(t)

	assert.Equal(t, "directives", pkg.Schema.Package)
	assert.Equal(t, "parsegen/internal/analyze/testdata/directives", pkg.Schema.PkgPath)
	assert.NotEmpty(t, pkg.Dir)

	// Only types with pattern or variant directives are parsed.
	assert.Equal(t, []string{"Record", "Meters", "Shape", "Broken"}, pkg.Schema.Names())
}

func TestAnalyzer_Record(t *testing.T) {
	pkg := loadTestPackage(t)

	rec := pkg.Schema.Lookup("Record")
	require.NotNil(t, rec)
	assert.Equal(t, schema.ShapeRecord, rec.Shape)
	assert.True(t, rec.HasPattern)
	assert.Equal(t, `^#(?P<id>\d+) (?P<name>\w+)$`, rec.Pattern)
	assert.Equal(t, "directives.go:9:6", rec.Pos)
	require.Len(t, rec.Fields, 8)

	byName := make(map[string]*schema.Field)
	for _, f := range rec.Fields {
		byName[f.Name] = f
	}

	assert.Equal(t, "id", byName["ID"].Capture)
	assert.Equal(t, schema.KindInt, byName["ID"].Type.Kind)
	assert.Equal(t, schema.KindString, byName["Name"].Type.Kind)
	assert.True(t, byName["Note"].Skip)
	assert.Equal(t, "id * 2", byName["Double"].With)
	assert.Equal(t, 3, byName["Double"].Index)

	wait := byName["Wait"].Type
	assert.Equal(t, schema.KindDuration, wait.Kind)
	assert.Equal(t, "time.Duration", wait.Expr)
	assert.Equal(t, "time", wait.Import)

	addr := byName["Addr"].Type
	assert.Equal(t, schema.KindPointer, addr.Kind)
	assert.True(t, addr.Optional())
	assert.Equal(t, schema.KindText, addr.Elem.Kind)
	assert.Equal(t, []string{"net/netip"}, addr.Imports())

	assert.Equal(t, schema.KindBytes, byName["Raw"].Type.Kind)

	inner := byName["Inner"].Type
	assert.Equal(t, schema.KindParser, inner.Kind)
	assert.Equal(t, "ParseMeters", inner.Parser)
	assert.Equal(t, "Meters", inner.Expr)
}

func TestAnalyzer_Newtype(t *testing.T) {
	pkg := loadTestPackage(t)

	m := pkg.Schema.Lookup("Meters")
	require.NotNil(t, m)
	assert.Equal(t, schema.ShapeNewtype, m.Shape)
	require.Len(t, m.Fields, 1)
	assert.True(t, m.Fields[0].Positional())
	assert.Equal(t, schema.KindUint, m.Fields[0].Type.Kind)
	assert.Equal(t, "uint32", m.Fields[0].Type.Expr)
}

func TestAnalyzer_Union(t *testing.T) {
	pkg := loadTestPackage(t)

	u := pkg.Schema.Lookup("Shape")
	require.NotNil(t, u)
	assert.Equal(t, schema.ShapeUnion, u.Shape)
	assert.False(t, u.HasPattern)
	require.Len(t, u.Variants, 3)

	circle, square, nothing := u.Variants[0], u.Variants[1], u.Variants[2]

	assert.Equal(t, "Circle", circle.Name)
	assert.Equal(t, `^circle (?P<r>\d+)$`, circle.Pattern)
	assert.Equal(t, schema.ShapeRecord, circle.Shape)
	require.Len(t, circle.Fields, 1)
	assert.Equal(t, "r", circle.Fields[0].Capture)
	assert.Equal(t, schema.KindFloat, circle.Fields[0].Type.Kind)

	assert.True(t, square.Pointer)
	assert.Equal(t, "*Square", square.Expr())

	assert.Equal(t, schema.ShapeUnit, nothing.Shape)
	assert.Empty(t, nothing.Fields)

	assert.Empty(t, pkg.Diagnostics.ForType("Shape").Errors)
}

func TestAnalyzer_Diagnostics(t *testing.T) {
	pkg := loadTestPackage(t)

	broken := pkg.Diagnostics.ForType("Broken")
	assert.Equal(t, []string{"unknown_variant", "variant_not_implementing", "invalid_directive"}, codes(broken.Errors))
	assert.Equal(t, []string{"unknown_directive"}, codes(broken.Warnings))

	assert.Empty(t, pkg.Diagnostics.ForType("Record").All())
}

func TestResolver(t *testing.T) {
	pkg := loadTestPackage(t)
	r := pkg.Resolver

	tests := []struct {
		expr   string
		kind   schema.Kind
		result string
	}{
		{"uint8", schema.KindUint, "uint8"},
		{"time.Duration", schema.KindDuration, "time.Duration"},
		{"netip.Addr", schema.KindText, "netip.Addr"},
		{"Meters", schema.KindParser, "Meters"},
		{"Circle", schema.KindOther, "Circle"},
		{"[]Meters", schema.KindSlice, "[]Meters"},
		{"*float64", schema.KindPointer, "*float64"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			ref, err := r.Resolve(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ref.Kind)
			assert.Equal(t, tt.result, ref.Expr)
		})
	}

	// Packages the sources do not import fall back to name resolution.
	ref, err := r.Resolve("strconv.NumError")
	require.NoError(t, err)
	assert.Equal(t, schema.KindText, ref.Kind)

	_, err = r.Resolve("Nope")
	require.Error(t, err)

	ft, ok := r.StructFieldType("Circle", "R")
	require.True(t, ok)
	assert.Equal(t, schema.KindFloat, ft.Kind)

	ft, ok = r.StructFieldType("*Square", "Side")
	require.True(t, ok)
	assert.Equal(t, schema.KindInt, ft.Kind)

	_, ok = r.StructFieldType("Meters", "X")
	assert.False(t, ok)
}

func TestDirectives(t *testing.T) {
	group := &ast.CommentGroup{List: []*ast.Comment{
		{Slash: token.Pos(1), Text: "// Size is a size."},
		{Slash: token.Pos(20), Text: "//parsegen:pattern ^(?P<w>\\d+) $"},
		{Slash: token.Pos(60), Text: "//parsegen:with"},
		{Slash: token.Pos(80), Text: "// parsegen:pattern ignored"},
	}}

	dirs := Directives(nil, group)
	require.Len(t, dirs, 2)
	assert.Equal(t, Directive{Name: "pattern", Arg: `^(?P<w>\d+) $`, Pos: 20}, dirs[0])
	assert.Equal(t, Directive{Name: "with", Pos: 60}, dirs[1])
}

func TestParseVariant(t *testing.T) {
	spec, err := ParseVariant(`*Move ^move (?P<0>-?\d+)$`)
	require.NoError(t, err)
	assert.Equal(t, VariantSpec{Type: "Move", Pointer: true, Pattern: `^move (?P<0>-?\d+)$`}, spec)

	spec, err = ParseVariant("Quit ^quit$")
	require.NoError(t, err)
	assert.False(t, spec.Pointer)

	for _, bad := range []string{"", "Quit", "pkg.Quit ^x$", "**Quit ^x$"} {
		_, err := ParseVariant(bad)
		assert.Error(t, err, bad)
	}
}
