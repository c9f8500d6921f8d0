package gen

import (
	"fmt"
	"strings"

	"parsegen/internal/plan"
	"parsegen/internal/schema"
)

// typeData holds everything the templates need for one parsed type.
type typeData struct {
	Name  string
	Func  string
	Union bool
	// Record and newtype.
	Const     string
	Literal   string
	ZeroVar   bool
	Zero      string
	UsesMatch bool
	Body      string
	Result    string
	// Union.
	SetVar   string
	Variants []variantData
}

type variantData struct {
	Name      string
	Func      string
	Const     string
	Literal   string
	Unit      bool
	UsesMatch bool
	Body      string
	Result    string
}

// buildTypeData lowers one planned type into template data.
func (g *Generator) buildTypeData(t *plan.ResolvedType) (*typeData, error) {
	data := &typeData{Name: t.Name, Func: schema.ParserName(t.Name)}

	if t.Shape == schema.ShapeUnion {
		data.Union = true
		data.SetVar = "parsegen" + t.Name + "Variants"

		for _, v := range t.Variants {
			vd, err := g.buildVariantData(t.Name, v)
			if err != nil {
				return nil, fmt.Errorf("variant %s: %w", v.Name, err)
			}

			data.Variants = append(data.Variants, *vd)
		}

		return data, nil
	}

	data.Const = "parsegen" + t.Name + "Pattern"
	data.Literal = patternLiteral(t.Pattern.Normalized)

	data.Zero = t.Name + "{}"
	if t.Shape == schema.ShapeNewtype {
		data.ZeroVar, data.Zero = true, "zero"
	}

	b := &body{fail: func(label string) string {
		return fmt.Sprintf("return %s, parsekit.Fail(%q, %q, err)", data.Zero, t.Name, label)
	}}

	values, err := g.buildFields(b, t.Fields, "")
	if err != nil {
		return nil, err
	}

	data.UsesMatch, data.Body = b.usesMatch, b.String()
	data.Result = composite(t.Name, t.Shape, t.Fields, values)

	return data, nil
}

func (g *Generator) buildVariantData(union string, v *plan.ResolvedVariant) (*variantData, error) {
	vd := &variantData{
		Name:    v.Name,
		Func:    "parse" + union + v.Name,
		Const:   "parsegen" + union + v.Name + "Pattern",
		Literal: patternLiteral(v.Pattern.Normalized),
		Unit:    v.Shape == schema.ShapeUnit,
	}

	b := &body{fail: func(label string) string {
		return fmt.Sprintf("return nil, parsekit.Fail(%q, %q, err)", union, label)
	}}

	values, err := g.buildFields(b, v.Fields, v.Name+".")
	if err != nil {
		return nil, err
	}

	result := composite(v.Name, v.Shape, v.Fields, values)

	switch {
	case !v.Pointer:
	case v.Shape == schema.ShapeNewtype:
		b.emit("out := %s", result)
		result = "out"

		fallthrough
	default:
		result = "&" + result
	}

	vd.UsesMatch, vd.Body, vd.Result = b.usesMatch, b.String(), result

	return vd, nil
}

// buildFields emits the statements computing each field in declaration
// order and returns the value expression per field; skipped fields get "".
func (g *Generator) buildFields(b *body, fields []*plan.ResolvedField, prefix string) ([]string, error) {
	values := make([]string, len(fields))

	for i, f := range fields {
		if f.Strategy == plan.StrategySkip {
			continue
		}

		label := prefix + f.Field.Label()
		name := fmt.Sprintf("v%d", i)

		b.blank()

		if g.config.GenerateComments && f.Explanation != "" {
			b.emit("// %s", f.Explanation)
		}

		switch f.Strategy {
		case plan.StrategyCapture:
			call, err := fetch(f.Group, f.Field.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Field.Label(), err)
			}

			b.usesMatch = true
			b.emit("%s, err := %s", name, call)
			b.check(label)
		case plan.StrategyConstruct:
			l := &lowerer{b: b, field: f, label: label}

			value := l.lower(f.Construct)
			if l.err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Field.Label(), l.err)
			}

			b.emit("var %s %s = %s", name, f.Field.Type.Expr, value)
		}

		values[i] = name
	}

	return values, nil
}

// composite returns the expression building a record, unit or newtype from
// its field values.
func composite(name string, shape schema.Shape, fields []*plan.ResolvedField, values []string) string {
	if shape == schema.ShapeNewtype {
		for _, v := range values {
			if v != "" {
				return name + "(" + v + ")"
			}
		}

		return "zero"
	}

	var sb strings.Builder

	sb.WriteString(name + "{")

	n := 0

	for i, f := range fields {
		if values[i] == "" {
			continue
		}

		if n == 0 {
			sb.WriteString("\n")
		}

		fmt.Fprintf(&sb, "\t\t%s: %s,\n", f.Field.Name, values[i])
		n++
	}

	if n > 0 {
		sb.WriteString("\t")
	}

	sb.WriteString("}")

	return sb.String()
}
