package plan

import (
	"fmt"

	"parsegen/internal/expr"
	"parsegen/internal/schema"
)

var (
	stringType = schema.TypeRef{Expr: "string", Kind: schema.KindString}
	intType    = schema.TypeRef{Expr: "int", Kind: schema.KindInt}
	uintType   = schema.TypeRef{Expr: "uint", Kind: schema.KindUint}
	floatType  = schema.TypeRef{Expr: "float64", Kind: schema.KindFloat}
	runeType   = schema.TypeRef{Expr: "rune", Kind: schema.KindInt}
	boolType   = schema.TypeRef{Expr: "bool", Kind: schema.KindBool}
)

// TypeError is a construct whose type cannot be worked out.
type TypeError struct {
	Pos int
	Msg string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Pos, e.Msg)
}

// inferrer pushes expected types down a rewritten construct. A capture takes
// its annotation, else the type expected at its position, else string.
type inferrer struct {
	types  schema.TypeResolver
	fields schema.StructFieldResolver
	out    map[expr.Expr]schema.TypeRef
	err    *TypeError
}

// inferTypes types the nodes of e for a value of type want.
func inferTypes(types schema.TypeResolver, e expr.Expr, want schema.TypeRef) (map[expr.Expr]schema.TypeRef, error) {
	in := &inferrer{types: types, out: make(map[expr.Expr]schema.TypeRef)}
	in.fields, _ = types.(schema.StructFieldResolver)

	in.visit(e, &want)

	if in.err != nil {
		return nil, in.err
	}

	return in.out, nil
}

func (in *inferrer) fail(pos int, format string, args ...any) {
	if in.err == nil {
		in.err = &TypeError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
	}
}

func (in *inferrer) resolve(t *expr.TypeExpr) *schema.TypeRef {
	ref, err := in.types.Resolve(t.Text)
	if err != nil {
		in.fail(t.TypePos, "%v", err)
		return nil
	}

	return &ref
}

func (in *inferrer) visit(e expr.Expr, want *schema.TypeRef) {
	switch x := e.(type) {
	case *expr.Capture:
		in.capture(x, want)
	case *expr.Paren:
		in.visit(x.X, want)
	case *expr.Block:
		in.block(x, want)
	case *expr.If:
		t := want
		if t == nil {
			t = in.static(x)
		}

		if t == nil {
			in.fail(x.IfPos, "cannot infer the type of the if expression; annotate a branch value")
			return
		}

		in.out[x] = *t
		in.visit(x.Cond, &boolType)
		in.block(x.Then, t)
		in.visit(x.Else, t)
	case *expr.Binary:
		in.binary(x, want)
	case *expr.Unary:
		switch x.Op {
		case "!":
			in.visit(x.X, &boolType)
		case "*":
			in.visit(x.X, nil)
		default:
			in.visit(x.X, want)
		}
	case *expr.Ref:
		if want != nil && want.Kind == schema.KindPointer {
			in.visit(x.X, want.Elem)
			return
		}

		in.visit(x.X, nil)
	case *expr.Cast:
		in.visit(x.X, in.resolve(x.Type))
	case *expr.Call:
		for _, a := range x.Args {
			in.visit(a, nil)
		}
	case *expr.MethodCall:
		in.visit(x.Recv, nil)

		for _, a := range x.Args {
			in.visit(a, nil)
		}
	case *expr.Try:
		in.visit(x.X, nil)
	case *expr.Tuple:
		typed := want != nil && want.Kind == schema.KindTuple && len(want.Elems) == len(x.Elems)
		if typed {
			in.out[x] = *want
		}

		for i, el := range x.Elems {
			var t *schema.TypeRef
			if typed {
				t = &want.Elems[i]
			}

			in.visit(el, t)
		}
	case *expr.ArrayLit:
		in.array(x, want)
	case *expr.StructLit:
		in.structLit(x)
	case *expr.Range:
		in.rangeExpr(x)
	}
}

func (in *inferrer) capture(x *expr.Capture, want *schema.TypeRef) {
	var t *schema.TypeRef

	switch {
	case x.Type != nil:
		t = in.resolve(x.Type)
		if t == nil {
			return
		}
	case want != nil:
		t = want
	default:
		t = &stringType
	}

	if !t.Scalar() && !t.Optional() {
		in.fail(x.NamePos, "capture %s cannot be converted to %s; annotate it with a scalar type", x.Name, t.Expr)
		return
	}

	in.out[x] = *t
}

func (in *inferrer) block(b *expr.Block, want *schema.TypeRef) {
	if b.Value != nil {
		in.visit(b.Value, want)
	}
}

func (in *inferrer) binary(x *expr.Binary, want *schema.TypeRef) {
	switch x.Op {
	case "&&", "||":
		in.visit(x.X, &boolType)
		in.visit(x.Y, &boolType)
	case "==", "!=", "<", "<=", ">", ">=":
		t := in.static(x.X)
		if t == nil {
			t = in.static(x.Y)
		}

		in.visit(x.X, t)
		in.visit(x.Y, t)
	case "<<", ">>":
		in.visit(x.X, want)
		in.visit(x.Y, &uintType)
	default:
		t := want
		if t == nil {
			t = in.static(x.X)
		}

		if t == nil {
			t = in.static(x.Y)
		}

		in.visit(x.X, t)
		in.visit(x.Y, t)
	}
}

func (in *inferrer) array(x *expr.ArrayLit, want *schema.TypeRef) {
	t := want
	if x.Type != nil {
		t = in.resolve(x.Type)
	} else {
		if t == nil || (t.Kind != schema.KindArray && t.Kind != schema.KindSlice) {
			in.fail(x.Lbrack, "cannot infer the type of the array literal; write it as [N]T{...}")
			return
		}

		in.out[x] = *t
	}

	var elem *schema.TypeRef
	if t != nil {
		elem = t.Elem
	}

	for _, el := range x.Elems {
		in.visit(el, elem)
	}
}

func (in *inferrer) structLit(x *expr.StructLit) {
	for _, kv := range x.Fields {
		var t *schema.TypeRef

		if kv.Key != "" && in.fields != nil {
			if ft, ok := in.fields.StructFieldType(x.Type.Text, kv.Key); ok {
				t = &ft
			}
		}

		in.visit(kv.Value, t)
	}

	if x.Rest != nil {
		in.visit(x.Rest, in.resolve(x.Type))
	}
}

// rangeExpr types both bounds alike: the static type of either bound,
// else int.
func (in *inferrer) rangeExpr(x *expr.Range) {
	var t *schema.TypeRef

	for _, b := range []expr.Expr{x.From, x.To} {
		if t == nil && b != nil {
			t = in.static(b)
		}
	}

	if t == nil {
		t = &intType
	}

	in.out[x] = *t

	if x.From != nil {
		in.visit(x.From, t)
	}

	if x.To != nil {
		in.visit(x.To, t)
	}
}

// static returns the type e has on its own, without context, or nil.
func (in *inferrer) static(e expr.Expr) *schema.TypeRef {
	switch x := e.(type) {
	case *expr.Capture:
		if x.Type != nil {
			return in.resolve(x.Type)
		}
	case *expr.BasicLit:
		return litType(x.Kind)
	case *expr.Cast:
		return in.resolve(x.Type)
	case *expr.StructLit:
		return in.resolve(x.Type)
	case *expr.ArrayLit:
		if x.Type != nil {
			return in.resolve(x.Type)
		}
	case *expr.Paren:
		return in.static(x.X)
	case *expr.Block:
		if x.Value != nil {
			return in.static(x.Value)
		}
	case *expr.If:
		if t := in.static(x.Then); t != nil {
			return t
		}

		if x.Else != nil {
			return in.static(x.Else)
		}
	case *expr.Unary:
		if x.Op == "!" {
			return &boolType
		}

		if x.Op != "*" {
			return in.static(x.X)
		}
	case *expr.Ref:
		if t := in.static(x.X); t != nil {
			elem := *t
			return &schema.TypeRef{Expr: "*" + t.Expr, Kind: schema.KindPointer, Elem: &elem}
		}
	case *expr.Binary:
		switch x.Op {
		case "&&", "||", "==", "!=", "<", "<=", ">", ">=":
			return &boolType
		case "<<", ">>":
			return in.static(x.X)
		}

		if t := in.static(x.X); t != nil {
			return t
		}

		return in.static(x.Y)
	}

	return nil
}

func litType(k expr.LitKind) *schema.TypeRef {
	switch k {
	case expr.LitInt:
		return &intType
	case expr.LitFloat:
		return &floatType
	case expr.LitRune:
		return &runeType
	case expr.LitBool:
		return &boolType
	default:
		return &stringType
	}
}
