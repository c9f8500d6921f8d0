package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapesYAML = `
package: shapes
imports:
  geo: example.com/geo
types:
  - name: Rectangle
    pattern: '^#(?P<id>\d+) @ (?P<x>\d+),(?P<y>\d+): (?P<width>\d+)x(?P<height>\d+)$'
    fields:
      - {name: ID, type: int, capture: id}
      - X int
      - Y int
      - {name: Area, type: int, with: "width: int * height: int"}
      - {name: Note, type: string, skip: true}
  - name: Meters
    pattern: '^(?P<0>\d+)m$'
    newtype: int
  - name: Command
    variants:
      - {name: Quit, pattern: '^quit$'}
      - {name: Move, pattern: '^move (?P<0>-?\d+)$', newtype: int}
      - name: Place
        pointer: true
        pattern: '^place (?P<at>.+)$'
        fields:
          - At geo.Point
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(shapesYAML))
	require.NoError(t, err)

	assert.Equal(t, "shapes", f.Package)
	require.Len(t, f.Types, 3)

	rect := f.Types[0]
	assert.Equal(t, "Rectangle", rect.Name)
	require.NotNil(t, rect.Pattern)
	require.Len(t, rect.Fields, 5)
	assert.Equal(t, FieldEntry{Name: "ID", Type: "int", Capture: "id", line: 9}, rect.Fields[0])
	assert.Equal(t, "X", rect.Fields[1].Name)
	assert.Equal(t, "int", rect.Fields[1].Type)
	assert.Equal(t, "width: int * height: int", rect.Fields[3].With)
	assert.True(t, rect.Fields[4].Skip)

	cmd := f.Types[2]
	require.Len(t, cmd.Variants, 3)
	assert.Nil(t, cmd.Pattern)
	assert.True(t, cmd.Variants[2].Pointer)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"no package", "types: []", "schema file has no package"},
		{"bad shorthand", "package: p\ntypes:\n  - name: T\n    fields: [ID]", `expected "Name Type"`},
		{"fields not a list", "package: p\ntypes:\n  - name: T\n    fields: {a: b}", "expected a list of fields"},
		{"malformed", "package: [", "failed to parse schema YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestBuild(t *testing.T) {
	f, err := Parse([]byte(shapesYAML))
	require.NoError(t, err)

	s := f.Build("shapes.yaml")
	assert.Equal(t, []string{"Rectangle", "Meters", "Command"}, s.Names())

	rect := s.Lookup("Rectangle")
	require.NotNil(t, rect)
	assert.Equal(t, ShapeRecord, rect.Shape)
	assert.True(t, rect.HasPattern)
	assert.Equal(t, "shapes.yaml:6", rect.Pos)
	assert.Equal(t, KindInt, rect.Fields[0].Type.Kind)
	assert.Equal(t, 3, rect.Fields[3].Index)

	meters := s.Lookup("Meters")
	assert.Equal(t, ShapeNewtype, meters.Shape)
	require.Len(t, meters.Fields, 1)
	assert.True(t, meters.Fields[0].Positional())
	assert.Equal(t, "__0", meters.Fields[0].PositionalGroup())

	cmd := s.Lookup("Command")
	assert.Equal(t, ShapeUnion, cmd.Shape)
	assert.False(t, cmd.HasPattern)
	assert.Equal(t, ShapeUnit, cmd.Variants[0].Shape)
	assert.Equal(t, ShapeNewtype, cmd.Variants[1].Shape)
	assert.Equal(t, "*Place", cmd.Variants[2].Expr())

	at := cmd.Variants[2].Fields[0].Type
	assert.Equal(t, KindText, at.Kind)
	assert.Equal(t, "example.com/geo", at.Import)

	assert.False(t, Validate(s).HasErrors())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shapesYAML), 0o600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "shapes", s.Package)
	assert.Len(t, s.Types, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read schema file")
}

func TestNameResolver(t *testing.T) {
	s := &Schema{Types: []*Type{
		{Name: "Point", Shape: ShapeRecord, Fields: []*Field{{Name: "X", Type: TypeRef{Expr: "int", Kind: KindInt}}}},
	}}
	r := NewNameResolver(s)

	tests := []struct {
		expr string
		kind Kind
	}{
		{"string", KindString},
		{"int8", KindInt},
		{"rune", KindInt},
		{"byte", KindUint},
		{"uint64", KindUint},
		{"float32", KindFloat},
		{"bool", KindBool},
		{"[]byte", KindBytes},
		{"time.Duration", KindDuration},
		{"Point", KindParser},
		{"netip.Addr", KindText},
		{"*int", KindPointer},
		{"[]int", KindSlice},
		{"[4]uint8", KindArray},
		{"parsekit.Tuple2[int, string]", KindTuple},
		{"geo.Set[int]", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			ref, err := r.Resolve(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ref.Kind)
			assert.Equal(t, tt.expr, ref.Expr)
		})
	}

	ref, err := r.Resolve("[4]uint8")
	require.NoError(t, err)
	assert.Equal(t, 4, ref.Len)
	assert.Equal(t, KindUint, ref.Elem.Kind)

	ref, err = r.Resolve("parsekit.Tuple2[int, []string]")
	require.NoError(t, err)
	require.Len(t, ref.Elems, 2)
	assert.Equal(t, KindSlice, ref.Elems[1].Kind)
	assert.Equal(t, []string{ParsekitPath}, ref.Imports())

	ref, err = r.Resolve("*Point")
	require.NoError(t, err)
	assert.True(t, ref.Optional())
	assert.Equal(t, "ParsePoint", ref.Elem.Parser)

	ref, err = r.Resolve("time.Duration")
	require.NoError(t, err)
	assert.Equal(t, []string{"time"}, ref.Imports())

	for _, bad := range []string{"", "a-b", "[x]int", "parsekit.Tuple3[int, int]"} {
		_, err := r.Resolve(bad)
		assert.Error(t, err, bad)
	}

	ft, ok := r.StructFieldType("Point", "X")
	assert.True(t, ok)
	assert.Equal(t, KindInt, ft.Kind)

	_, ok = r.StructFieldType("Point", "Y")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	intRef := TypeRef{Expr: "int", Kind: KindInt}

	tests := []struct {
		name  string
		types []*Type
		codes []string
	}{
		{
			name: "valid record",
			types: []*Type{{Name: "A", Shape: ShapeRecord, HasPattern: true,
				Fields: []*Field{{Name: "X", Type: intRef}}}},
		},
		{
			name:  "empty pattern is a pattern",
			types: []*Type{{Name: "A", Shape: ShapeUnit, HasPattern: true}},
		},
		{
			name:  "missing pattern",
			types: []*Type{{Name: "A", Shape: ShapeRecord}},
			codes: []string{"missing_pattern"},
		},
		{
			name: "pattern on union",
			types: []*Type{{Name: "U", Shape: ShapeUnion, HasPattern: true, Pattern: "^x$",
				Variants: []*Variant{{Name: "V", Shape: ShapeUnit, HasPattern: true}}}},
			codes: []string{"pattern_on_union"},
		},
		{
			name: "variant missing pattern",
			types: []*Type{{Name: "U", Shape: ShapeUnion,
				Variants: []*Variant{{Name: "V", Shape: ShapeUnit}}}},
			codes: []string{"variant_missing_pattern"},
		},
		{
			name:  "empty union",
			types: []*Type{{Name: "U", Shape: ShapeUnion}},
			codes: []string{"empty_union"},
		},
		{
			name: "duplicate variant",
			types: []*Type{{Name: "U", Shape: ShapeUnion, Variants: []*Variant{
				{Name: "V", Shape: ShapeUnit, HasPattern: true},
				{Name: "V", Shape: ShapeUnit, HasPattern: true},
			}}},
			codes: []string{"duplicate_variant"},
		},
		{
			name: "duplicate type",
			types: []*Type{
				{Name: "A", Shape: ShapeUnit, HasPattern: true},
				{Name: "A", Shape: ShapeUnit, HasPattern: true},
			},
			codes: []string{"duplicate_type"},
		},
		{
			name: "duplicate field",
			types: []*Type{{Name: "A", Shape: ShapeRecord, HasPattern: true, Fields: []*Field{
				{Name: "X", Type: intRef},
				{Name: "X", Index: 1, Type: intRef},
			}}},
			codes: []string{"duplicate_field"},
		},
		{
			name: "invalid newtype",
			types: []*Type{{Name: "N", Shape: ShapeNewtype, HasPattern: true, Fields: []*Field{
				{Type: intRef},
				{Index: 1, Type: intRef},
			}}},
			codes: []string{"invalid_newtype"},
		},
		{
			name: "conflicting annotations",
			types: []*Type{{Name: "A", Shape: ShapeRecord, HasPattern: true, Fields: []*Field{
				{Name: "X", Type: intRef, Capture: "x", With: "x + 1"},
				{Name: "Y", Index: 1, Type: intRef, Skip: true, Capture: "y"},
			}}},
			codes: []string{"conflicting_annotations", "conflicting_annotations"},
		},
		{
			name: "unknown type",
			types: []*Type{{Name: "A", Shape: ShapeRecord, HasPattern: true, Fields: []*Field{
				{Name: "X", Type: TypeRef{Expr: "a-b"}},
			}}},
			codes: []string{"unknown_type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(&Schema{Package: "p", Types: tt.types})

			var codes []string
			for _, d := range res.Errors {
				codes = append(codes, d.Code)
			}

			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestValidate_ErrorsAreScopedToType(t *testing.T) {
	s := &Schema{Types: []*Type{
		{Name: "Good", Shape: ShapeUnit, HasPattern: true},
		{Name: "Bad", Shape: ShapeRecord},
	}}

	res := Validate(s)
	require.True(t, res.HasErrors())

	good := res.ForType("Good")
	assert.False(t, good.HasErrors())

	bad := res.ForType("Bad")
	assert.True(t, bad.HasErrors())
}

func TestValidate_Nil(t *testing.T) {
	res := Validate(nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "schema_is_nil", res.Errors[0].Code)
}
