package schema

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads a YAML schema file and builds its Schema.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f.Build(path), nil
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}

	if f.Package == "" {
		return nil, errors.New("schema file has no package")
	}

	return &f, nil
}

// Build turns the file into a Schema. Type expressions are resolved with a
// NameResolver over the file's own types; a type that fails to resolve is
// kept with KindUnknown so validation can report it against its owner.
func (f *File) Build(source string) *Schema {
	s := &Schema{Package: f.Package, Imports: f.Imports}

	for i := range f.Types {
		te := &f.Types[i]

		t := &Type{
			Name: te.Name,
			Pos:  position(source, te.line),
		}

		if te.Pattern != nil {
			t.Pattern, t.HasPattern = *te.Pattern, true
		}

		s.Types = append(s.Types, t)
	}

	res := NewNameResolver(s)

	for i := range f.Types {
		te, t := &f.Types[i], s.Types[i]

		switch {
		case len(te.Variants) > 0:
			t.Shape = ShapeUnion

			for j := range te.Variants {
				t.Variants = append(t.Variants, buildVariant(res, source, &te.Variants[j]))
			}
		default:
			t.Shape, t.Fields = buildFields(res, source, te.Newtype, te.With, te.Fields, te.line)
		}
	}

	return s
}

func buildVariant(res TypeResolver, source string, ve *VariantEntry) *Variant {
	v := &Variant{
		Name:    ve.Name,
		Pointer: ve.Pointer,
		Pos:     position(source, ve.line),
	}

	if ve.Pattern != nil {
		v.Pattern, v.HasPattern = *ve.Pattern, true
	}

	v.Shape, v.Fields = buildFields(res, source, ve.Newtype, ve.With, ve.Fields, ve.line)

	return v
}

// buildFields derives the shape of a record-like entry from its newtype and
// field list.
func buildFields(
	res TypeResolver,
	source, newtype, with string,
	entries FieldEntries,
	line int,
) (Shape, []*Field) {
	var fields []*Field

	if newtype != "" {
		fields = append(fields, &Field{
			Index: 0,
			Type:  resolveOrUnknown(res, newtype),
			With:  with,
			Pos:   position(source, line),
		})
	}

	for i := range entries {
		fe := &entries[i]
		fields = append(fields, &Field{
			Name:    fe.Name,
			Index:   len(fields),
			Type:    resolveOrUnknown(res, fe.Type),
			Capture: fe.Capture,
			Skip:    fe.Skip,
			With:    fe.With,
			Pos:     position(source, fe.line),
		})
	}

	switch {
	case newtype != "":
		return ShapeNewtype, fields
	case len(fields) == 0:
		return ShapeUnit, nil
	default:
		return ShapeRecord, fields
	}
}

func resolveOrUnknown(res TypeResolver, typeExpr string) TypeRef {
	ref, err := res.Resolve(typeExpr)
	if err != nil {
		return TypeRef{Expr: typeExpr, Kind: KindUnknown}
	}

	return ref
}

func position(source string, line int) string {
	if source == "" || line == 0 {
		return ""
	}

	return fmt.Sprintf("%s:%d", source, line)
}
