package expr

// Inspect traverses e in depth-first order, calling f for every expression.
// Children are skipped when f returns false.
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}

	for _, c := range children(e) {
		Inspect(c, f)
	}
}

// Captures returns the names of the capture groups referenced by a rewritten
// tree, in first-use order.
func Captures(e Expr) []string {
	var names []string

	seen := make(map[string]bool)

	Inspect(e, func(n Expr) bool {
		if c, ok := n.(*Capture); ok && !seen[c.Name] {
			seen[c.Name] = true
			names = append(names, c.Name)
		}

		return true
	})

	return names
}

func children(e Expr) []Expr {
	switch x := e.(type) {
	case *Call:
		return append([]Expr{x.Fun}, x.Args...)
	case *MethodCall:
		return append([]Expr{x.Recv}, x.Args...)
	case *Cast:
		return []Expr{x.X}
	case *Unary:
		return []Expr{x.X}
	case *Ref:
		return []Expr{x.X}
	case *Binary:
		return []Expr{x.X, x.Y}
	case *Range:
		return nonNil(x.From, x.To)
	case *Try:
		return []Expr{x.X}
	case *Tuple:
		return x.Elems
	case *Paren:
		return []Expr{x.X}
	case *Block:
		var out []Expr

		for _, s := range x.Stmts {
			switch st := s.(type) {
			case *ExprStmt:
				out = append(out, st.X)
			case *LetStmt:
				out = append(out, nonNil(st.Value)...)
			}
		}

		return append(out, nonNil(x.Value)...)
	case *If:
		return []Expr{x.Cond, x.Then, x.Else}
	case *ArrayLit:
		return x.Elems
	case *StructLit:
		out := make([]Expr, 0, len(x.Fields)+1)
		for _, kv := range x.Fields {
			out = append(out, kv.Value)
		}

		return append(out, nonNil(x.Rest)...)
	case *Index:
		return []Expr{x.X, x.Index}
	case *FieldAccess:
		return []Expr{x.X}
	default:
		return nil
	}
}

func nonNil(list ...Expr) []Expr {
	out := list[:0]

	for _, e := range list {
		if e != nil {
			out = append(out, e)
		}
	}

	return out
}
