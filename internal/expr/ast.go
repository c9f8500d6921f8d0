package expr

// Expr is a node of a construction expression tree.
type Expr interface {
	// Pos returns the byte offset of the node in the source text.
	Pos() int
	exprNode()
}

// Stmt is a statement inside a block.
type Stmt interface {
	Pos() int
	stmtNode()
}

// TypeExpr is a Go type expression as written in the source, e.g. "uint8",
// "[]byte" or "time.Duration".
type TypeExpr struct {
	TypePos int
	Text    string
}

// LitKind is the kind of a literal.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitRune
	LitBool
)

type (
	// Ident is a bare identifier, optionally annotated with a conversion type
	// (a: uint8).
	Ident struct {
		NamePos int
		Name    string
		Type    *TypeExpr
	}

	// Capture is a reference to a capture group. It only appears in rewritten
	// trees.
	Capture struct {
		NamePos int
		Name    string
		Type    *TypeExpr
	}

	// BasicLit is a literal; Value holds the literal as written.
	BasicLit struct {
		ValuePos int
		Kind     LitKind
		Value    string
	}

	// QualName is a qualified identifier such as pkg.Name.
	QualName struct {
		NamePos int
		Pkg     string
		Name    string
	}

	// Call is a function call. Fun is an *Ident or a *QualName.
	Call struct {
		Fun  Expr
		Args []Expr
	}

	// MethodCall is a method call on an arbitrary receiver.
	MethodCall struct {
		Recv Expr
		Name string
		Args []Expr
	}

	// Cast is a conversion to a predeclared or composite type: int8(x), []byte(s).
	Cast struct {
		Type *TypeExpr
		X    Expr
	}

	// Unary is a prefix operator expression (-x, +x, !x, ^x, *x).
	Unary struct {
		OpPos int
		Op    string
		X     Expr
	}

	// Ref takes the address of its operand (&x).
	Ref struct {
		OpPos int
		X     Expr
	}

	// Binary is an infix operator expression.
	Binary struct {
		Op string
		X  Expr
		Y  Expr
	}

	// Range is lo..hi or lo..=hi; either bound may be missing.
	Range struct {
		OpPos     int
		From      Expr
		To        Expr
		Inclusive bool
	}

	// Try propagates the error of a fallible call (f(x)?).
	Try struct {
		X Expr
	}

	// Tuple is a parenthesized, comma separated list of at least two values.
	Tuple struct {
		Lparen int
		Elems  []Expr
	}

	// Paren is a parenthesized expression.
	Paren struct {
		Lparen int
		X      Expr
	}

	// Block is { stmts; value }. Value is nil for a block without a trailing
	// expression.
	Block struct {
		Lbrace int
		Stmts  []Stmt
		Value  Expr
	}

	// If is if cond { ... } else { ... }; Else is a *Block or another *If.
	If struct {
		IfPos int
		Cond  Expr
		Then  *Block
		Else  Expr
	}

	// ArrayLit is [a, b] (type taken from context) or [N]T{a, b} / []T{a, b}.
	ArrayLit struct {
		Lbrack int
		Type   *TypeExpr
		Elems  []Expr
	}

	// StructLit is T{k: v, ...}, optionally ending with ..rest.
	StructLit struct {
		Type   *TypeExpr
		Fields []*KeyValue
		Rest   Expr
	}

	// Index is x[i].
	Index struct {
		X     Expr
		Index Expr
	}

	// FieldAccess is x.f on an operand that is not a bare identifier.
	FieldAccess struct {
		X    Expr
		Name string
	}

	// Opaque is a construct that is recognized but not modeled: loops,
	// switch-like branching and function literals.
	Opaque struct {
		KeyPos  int
		Keyword string
	}
)

// KeyValue is one element of a struct literal. Key is empty for positional
// elements.
type KeyValue struct {
	KeyPos    int
	Key       string
	Value     Expr
	Shorthand bool
}

type (
	// ExprStmt is an expression evaluated for its effect.
	ExprStmt struct {
		X Expr
	}

	// LetStmt is a local binding (x := v, var x = v).
	LetStmt struct {
		KeyPos int
		Names  []string
		Value  Expr
	}

	// DeclStmt is a nested declaration (func, type, const).
	DeclStmt struct {
		KeyPos  int
		Keyword string
	}
)

func (x *Ident) Pos() int       { return x.NamePos }
func (x *Capture) Pos() int     { return x.NamePos }
func (x *BasicLit) Pos() int    { return x.ValuePos }
func (x *QualName) Pos() int    { return x.NamePos }
func (x *Call) Pos() int        { return x.Fun.Pos() }
func (x *MethodCall) Pos() int  { return x.Recv.Pos() }
func (x *Cast) Pos() int        { return x.Type.TypePos }
func (x *Unary) Pos() int       { return x.OpPos }
func (x *Ref) Pos() int         { return x.OpPos }
func (x *Binary) Pos() int      { return x.X.Pos() }
func (x *Try) Pos() int         { return x.X.Pos() }
func (x *Tuple) Pos() int       { return x.Lparen }
func (x *Paren) Pos() int       { return x.Lparen }
func (x *Block) Pos() int       { return x.Lbrace }
func (x *If) Pos() int          { return x.IfPos }
func (x *ArrayLit) Pos() int    { return x.Lbrack }
func (x *StructLit) Pos() int   { return x.Type.TypePos }
func (x *Index) Pos() int       { return x.X.Pos() }
func (x *FieldAccess) Pos() int { return x.X.Pos() }
func (x *Opaque) Pos() int      { return x.KeyPos }

func (x *Range) Pos() int {
	if x.From != nil {
		return x.From.Pos()
	}

	return x.OpPos
}

func (*Ident) exprNode()       {}
func (*Capture) exprNode()     {}
func (*BasicLit) exprNode()    {}
func (*QualName) exprNode()    {}
func (*Call) exprNode()        {}
func (*MethodCall) exprNode()  {}
func (*Cast) exprNode()        {}
func (*Unary) exprNode()       {}
func (*Ref) exprNode()         {}
func (*Binary) exprNode()      {}
func (*Range) exprNode()       {}
func (*Try) exprNode()         {}
func (*Tuple) exprNode()       {}
func (*Paren) exprNode()       {}
func (*Block) exprNode()       {}
func (*If) exprNode()          {}
func (*ArrayLit) exprNode()    {}
func (*StructLit) exprNode()   {}
func (*Index) exprNode()       {}
func (*FieldAccess) exprNode() {}
func (*Opaque) exprNode()      {}

func (s *ExprStmt) Pos() int { return s.X.Pos() }
func (s *LetStmt) Pos() int  { return s.KeyPos }
func (s *DeclStmt) Pos() int { return s.KeyPos }

func (*ExprStmt) stmtNode() {}
func (*LetStmt) stmtNode()  {}
func (*DeclStmt) stmtNode() {}
