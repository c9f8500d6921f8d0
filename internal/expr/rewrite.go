package expr

import (
	"fmt"
	"slices"

	"parsegen/internal/match"
)

// absenceLiteral is the identifier left untouched in value position.
const absenceLiteral = "nil"

// position is the syntactic role of the node being visited.
type position int

const (
	// posValue is any place where a value is computed.
	posValue position = iota
	// posCallee is the function name of a call.
	posCallee
	// posReceiver is the receiver of a method call.
	posReceiver
)

// Option configures Rewrite.
type Option func(*rewriter)

// WithCaptures restricts references to the given capture group names.
// Unknown references and identifiers that would be read two ways become
// errors.
func WithCaptures(names ...string) Option {
	return func(r *rewriter) {
		r.names = names
		r.captures = make(map[string]bool, len(names))

		for _, n := range names {
			r.captures[n] = true
		}
	}
}

type rewriter struct {
	names    []string
	captures map[string]bool
}

// Rewrite returns a copy of e in which every identifier in value position is
// replaced by a *Capture carrying the identifier's annotation as its
// conversion type.
//
// Callee names, qualified names, type names, struct field keys and the
// absence literal nil are left alone. Method receivers are not descended
// into, except for a parenthesized range such as (a..b).Sum(). Shorthand
// struct fields are expanded to key: value form.
//
// Local bindings, nested declarations, loops, switch-like constructs,
// closures, index expressions and field access on computed values are
// reported as *Error with Kind ErrUnsupported.
func Rewrite(e Expr, opts ...Option) (Expr, error) {
	r := &rewriter{}
	for _, opt := range opts {
		opt(r)
	}

	return r.expr(e, posValue)
}

func (r *rewriter) isCapture(name string) bool {
	return r.captures[name]
}

func (r *rewriter) ambiguous(pos int, format string, args ...any) error {
	return &Error{Pos: pos, Kind: ErrAmbiguous, Msg: fmt.Sprintf(format, args...)}
}

func (r *rewriter) expr(e Expr, pos position) (Expr, error) {
	if pos == posReceiver {
		return r.receiver(e)
	}

	switch x := e.(type) {
	case *Ident:
		return r.ident(x, pos)
	case *Capture:
		return x, nil
	case *BasicLit:
		if x.Kind == LitBool && r.isCapture(x.Value) {
			return nil, r.ambiguous(x.ValuePos, "%s is both a literal and a capture group name", x.Value)
		}

		return x, nil
	case *QualName:
		if r.isCapture(x.Pkg) {
			return nil, r.ambiguous(x.NamePos, "qualifier %s is also a capture group name", x.Pkg)
		}

		return x, nil
	case *Call:
		fun, err := r.expr(x.Fun, posCallee)
		if err != nil {
			return nil, err
		}

		args, err := r.list(x.Args)
		if err != nil {
			return nil, err
		}

		return &Call{Fun: fun, Args: args}, nil
	case *MethodCall:
		recv, err := r.expr(x.Recv, posReceiver)
		if err != nil {
			return nil, err
		}

		args, err := r.list(x.Args)
		if err != nil {
			return nil, err
		}

		return &MethodCall{Recv: recv, Name: x.Name, Args: args}, nil
	case *Cast:
		v, err := r.expr(x.X, posValue)
		if err != nil {
			return nil, err
		}

		return &Cast{Type: x.Type, X: v}, nil
	case *Unary:
		v, err := r.expr(x.X, posValue)
		if err != nil {
			return nil, err
		}

		return &Unary{OpPos: x.OpPos, Op: x.Op, X: v}, nil
	case *Ref:
		v, err := r.expr(x.X, posValue)
		if err != nil {
			return nil, err
		}

		return &Ref{OpPos: x.OpPos, X: v}, nil
	case *Binary:
		lhs, err := r.expr(x.X, posValue)
		if err != nil {
			return nil, err
		}

		rhs, err := r.expr(x.Y, posValue)
		if err != nil {
			return nil, err
		}

		return &Binary{Op: x.Op, X: lhs, Y: rhs}, nil
	case *Range:
		return r.rangeExpr(x)
	case *Try:
		v, err := r.expr(x.X, posValue)
		if err != nil {
			return nil, err
		}

		return &Try{X: v}, nil
	case *Tuple:
		elems, err := r.list(x.Elems)
		if err != nil {
			return nil, err
		}

		return &Tuple{Lparen: x.Lparen, Elems: elems}, nil
	case *Paren:
		v, err := r.expr(x.X, posValue)
		if err != nil {
			return nil, err
		}

		return &Paren{Lparen: x.Lparen, X: v}, nil
	case *Block:
		b, err := r.block(x)
		if err != nil {
			return nil, err
		}

		return b, nil
	case *If:
		return r.ifExpr(x)
	case *ArrayLit:
		elems, err := r.list(x.Elems)
		if err != nil {
			return nil, err
		}

		return &ArrayLit{Lbrack: x.Lbrack, Type: x.Type, Elems: elems}, nil
	case *StructLit:
		return r.structLit(x)
	case *Index:
		return nil, unsupported(x.Pos(), "index expression")
	case *FieldAccess:
		return nil, unsupported(x.Pos(), "field access on a computed value")
	case *Opaque:
		return nil, unsupported(x.KeyPos, opaqueConstruct(x.Keyword))
	default:
		return nil, fmt.Errorf("unexpected expression node %T", e)
	}
}

func opaqueConstruct(keyword string) string {
	switch keyword {
	case "for":
		return "loop"
	case "func":
		return "closure"
	default:
		return keyword + " statement"
	}
}

func (r *rewriter) ident(x *Ident, pos position) (Expr, error) {
	if pos == posCallee {
		if r.isCapture(x.Name) {
			return nil, r.ambiguous(x.NamePos, "function name %s is also a capture group name", x.Name)
		}

		return x, nil
	}

	if x.Name == absenceLiteral {
		if r.isCapture(x.Name) {
			return nil, r.ambiguous(x.NamePos, "%s is both the absence literal and a capture group name", x.Name)
		}

		return x, nil
	}

	if r.captures != nil && !r.isCapture(x.Name) {
		return nil, &Error{
			Pos:        x.NamePos,
			Kind:       ErrUnknownCapture,
			Msg:        "no capture group named " + x.Name,
			Suggestion: match.Closest(x.Name, r.names),
		}
	}

	return &Capture{NamePos: x.NamePos, Name: x.Name, Type: x.Type}, nil
}

// receiver leaves method receivers as written, except for a parenthesized
// range which is rewritten like any other value.
func (r *rewriter) receiver(e Expr) (Expr, error) {
	if p, ok := e.(*Paren); ok {
		if _, ok := p.X.(*Range); ok {
			return r.expr(p, posValue)
		}
	}

	return e, nil
}

func (r *rewriter) list(list []Expr) ([]Expr, error) {
	out := make([]Expr, len(list))

	for i, e := range list {
		v, err := r.expr(e, posValue)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func (r *rewriter) rangeExpr(x *Range) (Expr, error) {
	out := &Range{OpPos: x.OpPos, Inclusive: x.Inclusive}

	var err error

	if x.From != nil {
		if out.From, err = r.expr(x.From, posValue); err != nil {
			return nil, err
		}
	}

	if x.To != nil {
		if out.To, err = r.expr(x.To, posValue); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (r *rewriter) block(x *Block) (*Block, error) {
	out := &Block{Lbrace: x.Lbrace}

	for _, s := range x.Stmts {
		switch st := s.(type) {
		case *LetStmt:
			return nil, unsupported(st.KeyPos, "local binding")
		case *DeclStmt:
			return nil, unsupported(st.KeyPos, "item declaration")
		case *ExprStmt:
			if _, err := r.expr(st.X, posValue); err != nil {
				return nil, err
			}

			return nil, unsupported(st.Pos(), "statement")
		}
	}

	if x.Value == nil {
		return nil, unsupported(x.Lbrace, "empty block")
	}

	v, err := r.expr(x.Value, posValue)
	if err != nil {
		return nil, err
	}

	out.Value = v

	return out, nil
}

func (r *rewriter) ifExpr(x *If) (Expr, error) {
	cond, err := r.expr(x.Cond, posValue)
	if err != nil {
		return nil, err
	}

	then, err := r.block(x.Then)
	if err != nil {
		return nil, err
	}

	els, err := r.expr(x.Else, posValue)
	if err != nil {
		return nil, err
	}

	return &If{IfPos: x.IfPos, Cond: cond, Then: then, Else: els}, nil
}

func (r *rewriter) structLit(x *StructLit) (Expr, error) {
	out := &StructLit{Type: x.Type, Fields: make([]*KeyValue, 0, len(x.Fields))}

	for _, kv := range x.Fields {
		v, err := r.expr(kv.Value, posValue)
		if err != nil {
			return nil, err
		}

		out.Fields = append(out.Fields, &KeyValue{KeyPos: kv.KeyPos, Key: kv.Key, Value: v})
	}

	if x.Rest != nil {
		rest, err := r.expr(x.Rest, posValue)
		if err != nil {
			return nil, err
		}

		out.Rest = rest
	}

	return out, nil
}

// IsExempt reports whether name is never treated as a capture reference in
// value position.
func IsExempt(name string) bool {
	return slices.Contains([]string{absenceLiteral, "true", "false"}, name)
}
