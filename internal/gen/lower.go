package gen

import (
	"fmt"
	"strconv"
	"strings"

	"parsegen/internal/expr"
	"parsegen/internal/plan"
	"parsegen/internal/schema"
)

// body accumulates the statements of one generated function.
type body struct {
	lines []string
	depth int
	temps int
	// usesMatch is set once a statement reads from the extractor.
	usesMatch bool
	// fail is the return statement for an error held in err.
	fail func(label string) string
}

func (b *body) emit(format string, args ...any) {
	b.lines = append(b.lines, strings.Repeat("\t", b.depth+1)+fmt.Sprintf(format, args...))
}

func (b *body) blank() {
	b.lines = append(b.lines, "")
}

func (b *body) temp() string {
	name := "t" + strconv.Itoa(b.temps)
	b.temps++

	return name
}

// check emits the error check after a fallible statement.
func (b *body) check(label string) {
	b.emit("if err != nil {")
	b.depth++
	b.emit("%s", b.fail(label))
	b.depth--
	b.emit("}")
}

func (b *body) String() string {
	return strings.Join(b.lines, "\n")
}

// lowerer turns a rewritten construction expression into statements and a
// final Go expression. Capture fetches are hoisted into temporaries that
// are checked for errors right away.
type lowerer struct {
	b     *body
	field *plan.ResolvedField
	label string
	err   error
}

func (l *lowerer) fail(e expr.Expr, format string, args ...any) string {
	if l.err == nil {
		l.err = fmt.Errorf("offset %d: %s", e.Pos(), fmt.Sprintf(format, args...))
	}

	return "nil"
}

func (l *lowerer) typeOf(e expr.Expr) (schema.TypeRef, bool) {
	return l.field.TypeOf(e)
}

// lower emits the statements e needs and returns its value.
func (l *lowerer) lower(e expr.Expr) string {
	switch x := e.(type) {
	case *expr.Capture:
		return l.capture(x)
	case *expr.Ident:
		return x.Name
	case *expr.BasicLit:
		return x.Value
	case *expr.QualName:
		return x.Pkg + "." + x.Name
	case *expr.Call:
		return l.lower(x.Fun) + "(" + l.list(x.Args) + ")"
	case *expr.MethodCall:
		return l.lower(x.Recv) + "." + x.Name + "(" + l.list(x.Args) + ")"
	case *expr.Cast:
		return castType(x.Type.Text) + "(" + l.lower(x.X) + ")"
	case *expr.Unary:
		return x.Op + l.operand(x.X)
	case *expr.Ref:
		return l.ref(x)
	case *expr.Binary:
		return l.binary(x)
	case *expr.Range:
		return l.rangeExpr(x)
	case *expr.Try:
		call := l.lower(x.X)
		tmp := l.b.temp()
		l.b.emit("%s, err := %s", tmp, call)
		l.b.check(l.label)

		return tmp
	case *expr.Tuple:
		return l.tuple(x)
	case *expr.Paren:
		return "(" + l.lower(x.X) + ")"
	case *expr.Block:
		return l.block(x)
	case *expr.If:
		return l.ifExpr(x)
	case *expr.ArrayLit:
		typ := ""
		if x.Type != nil {
			typ = x.Type.Text
		} else if t, ok := l.typeOf(x); ok {
			typ = t.Expr
		} else {
			return l.fail(x, "array literal has no type")
		}

		return typ + "{" + l.list(x.Elems) + "}"
	case *expr.StructLit:
		return l.structLit(x)
	default:
		return l.fail(e, "%s cannot be generated", expr.Format(e))
	}
}

func (l *lowerer) capture(x *expr.Capture) string {
	t, ok := l.typeOf(x)
	if !ok {
		t = schema.TypeRef{Expr: "string", Kind: schema.KindString}
	}

	call, err := fetch(x.Name, t)
	if err != nil {
		return l.fail(x, "capture %s: %v", x.Name, err)
	}

	tmp := l.b.temp()
	l.b.usesMatch = true
	l.b.emit("%s, err := %s", tmp, call)
	l.b.check(l.label)

	return tmp
}

func (l *lowerer) list(list []expr.Expr) string {
	parts := make([]string, 0, len(list))
	for _, e := range list {
		parts = append(parts, l.lower(e))
	}

	return strings.Join(parts, ", ")
}

// operand lowers an operand of a unary or binary operator, keeping nested
// operators grouped.
func (l *lowerer) operand(e expr.Expr) string {
	v := l.lower(e)

	switch e.(type) {
	case *expr.Binary, *expr.Unary:
		return "(" + v + ")"
	default:
		return v
	}
}

func (l *lowerer) ref(x *expr.Ref) string {
	v := l.lower(x.X)

	switch x.X.(type) {
	case *expr.StructLit, *expr.ArrayLit, *expr.Capture, *expr.If, *expr.Try:
		return "&" + v
	}

	tmp := l.b.temp()
	l.b.emit("%s := %s", tmp, v)

	return "&" + tmp
}

func (l *lowerer) binary(x *expr.Binary) string {
	if x.Op != "&&" && x.Op != "||" {
		left := l.operand(x.X)
		return left + " " + x.Op + " " + l.operand(x.Y)
	}

	left := l.operand(x.X)
	tmp := l.b.temp()

	// A right operand with statements of its own must only run when the
	// left operand does not decide the result.
	probe := &body{depth: l.b.depth + 1, temps: l.b.temps, fail: l.b.fail}
	inner := &lowerer{b: probe, field: l.field, label: l.label}
	right := inner.operand(x.Y)

	if inner.err != nil && l.err == nil {
		l.err = inner.err
	}

	if len(probe.lines) == 0 {
		return left + " " + x.Op + " " + right
	}

	l.b.temps = probe.temps
	l.b.usesMatch = l.b.usesMatch || probe.usesMatch
	l.b.emit("%s := %s", tmp, left)

	if x.Op == "&&" {
		l.b.emit("if %s {", tmp)
	} else {
		l.b.emit("if !%s {", tmp)
	}

	l.b.lines = append(l.b.lines, probe.lines...)
	l.b.depth++
	l.b.emit("%s = %s", tmp, right)
	l.b.depth--
	l.b.emit("}")

	return tmp
}

func (l *lowerer) rangeExpr(x *expr.Range) string {
	t, ok := l.typeOf(x)
	if !ok {
		t = schema.TypeRef{Expr: "int", Kind: schema.KindInt}
	}

	switch {
	case x.From != nil && x.To != nil:
		fn := "Span"
		if x.Inclusive {
			fn = "SpanInclusive"
		}

		from := l.lower(x.From)

		return fmt.Sprintf("parsekit.%s[%s](%s, %s)", fn, t.Expr, from, l.lower(x.To))
	case x.From != nil:
		return fmt.Sprintf("parsekit.SpanFrom[%s](%s)", t.Expr, l.lower(x.From))
	case x.To != nil && !x.Inclusive:
		return fmt.Sprintf("parsekit.SpanTo[%s](%s)", t.Expr, l.lower(x.To))
	default:
		return l.fail(x, "range needs a start or an exclusive end")
	}
}

func (l *lowerer) tuple(x *expr.Tuple) string {
	if len(x.Elems) > 4 {
		return l.fail(x, "tuples have at most 4 elements, got %d", len(x.Elems))
	}

	fn := "parsekit.NewTuple" + strconv.Itoa(len(x.Elems))

	if t, ok := l.typeOf(x); ok {
		args := make([]string, len(t.Elems))
		for i, el := range t.Elems {
			args[i] = el.Expr
		}

		fn += "[" + strings.Join(args, ", ") + "]"
	}

	return fn + "(" + l.list(x.Elems) + ")"
}

func (l *lowerer) block(x *expr.Block) string {
	if len(x.Stmts) > 0 || x.Value == nil {
		return l.fail(x, "block must hold a single expression")
	}

	return l.lower(x.Value)
}

func (l *lowerer) ifExpr(x *expr.If) string {
	t, ok := l.typeOf(x)
	if !ok {
		return l.fail(x, "if expression has no type")
	}

	if x.Else == nil {
		return l.fail(x, "if expression needs an else branch")
	}

	tmp := l.b.temp()
	l.b.emit("var %s %s", tmp, t.Expr)
	l.branches(x, tmp)

	return tmp
}

// branches emits an if/else chain assigning each branch value to tmp.
func (l *lowerer) branches(x *expr.If, tmp string) {
	cond := l.lower(x.Cond)
	l.b.emit("if %s {", cond)
	l.nested(func() string { return l.block(x.Then) }, tmp)

	switch els := x.Else.(type) {
	case *expr.Block:
		l.b.emit("} else {")
		l.nested(func() string { return l.block(els) }, tmp)
		l.b.emit("}")
	case *expr.If:
		if els.Else == nil {
			l.fail(els, "if expression needs an else branch")
			return
		}

		l.b.emit("} else {")
		l.b.depth++
		l.branches(els, tmp)
		l.b.depth--
		l.b.emit("}")
	default:
		l.fail(x, "unexpected else branch")
	}
}

func (l *lowerer) nested(value func() string, tmp string) {
	l.b.depth++
	v := value()
	l.b.emit("%s = %s", tmp, v)
	l.b.depth--
}

func (l *lowerer) structLit(x *expr.StructLit) string {
	keyed := len(x.Fields) > 0 && x.Fields[0].Key != ""

	for _, kv := range x.Fields {
		if (kv.Key != "") != keyed {
			return l.fail(x, "struct literal mixes keyed and positional values")
		}
	}

	if x.Rest == nil {
		parts := make([]string, 0, len(x.Fields))

		for _, kv := range x.Fields {
			if keyed {
				parts = append(parts, kv.Key+": "+l.lower(kv.Value))
			} else {
				parts = append(parts, l.lower(kv.Value))
			}
		}

		return x.Type.Text + "{" + strings.Join(parts, ", ") + "}"
	}

	if !keyed && len(x.Fields) > 0 {
		return l.fail(x, "struct update needs keyed values")
	}

	tmp := l.b.temp()
	l.b.emit("%s := %s", tmp, l.lower(x.Rest))

	for _, kv := range x.Fields {
		v := l.lower(kv.Value)
		l.b.emit("%s.%s = %s", tmp, kv.Key, v)
	}

	return tmp
}

// castType parenthesizes conversion types that would not parse as a
// function name.
func castType(t string) string {
	if strings.HasPrefix(t, "*") || strings.HasPrefix(t, "func") {
		return "(" + t + ")"
	}

	return t
}
