package expr

import (
	"strings"
)

var predeclaredTypes = map[string]bool{
	"bool": true, "string": true, "byte": true, "rune": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
}

// opaqueKeywords introduce constructs that are skipped over and reported by
// the rewriter.
var opaqueKeywords = map[string]bool{
	"for": true, "switch": true, "select": true, "func": true,
}

// declKeywords introduce nested declarations inside blocks.
var declKeywords = map[string]bool{
	"type": true, "const": true,
}

// Parse parses a construction expression.
func Parse(src string) (e Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(*Error)
			if !ok {
				panic(r)
			}

			e, err = nil, perr
		}
	}()

	p := &parser{lex: newLexer(src)}

	e = p.parseExpr()
	if tok := p.lex.peek(); tok.kind != tokEOF {
		throw(tok.pos, ErrSyntax, "unexpected %s after expression", describe(tok))
	}

	return e, nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// static expressions.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}

	return e
}

type parser struct {
	lex *lexer
	// noLit is non-zero while parsing an if condition, where a '{' after a
	// name opens the branch instead of a struct literal.
	noLit int
}

func describe(tok token) string {
	if tok.kind == tokEOF {
		return "end of input"
	}

	return "'" + tok.text + "'"
}

func (p *parser) isOp(op string) bool {
	tok := p.lex.peek()
	return tok.kind == tokOp && tok.text == op
}

func (p *parser) isKeyword(name string) bool {
	tok := p.lex.peek()
	return tok.kind == tokIdent && tok.text == name
}

func (p *parser) accept(op string) bool {
	if p.isOp(op) {
		p.lex.next()
		return true
	}

	return false
}

func (p *parser) expect(op string) token {
	tok := p.lex.next()
	if tok.kind != tokOp || tok.text != op {
		throw(tok.pos, ErrSyntax, "expected '%s', found %s", op, describe(tok))
	}

	return tok
}

func (p *parser) expectIdent() token {
	tok := p.lex.next()
	if tok.kind != tokIdent {
		throw(tok.pos, ErrSyntax, "expected identifier, found %s", describe(tok))
	}

	return tok
}

// allowLiterals re-enables struct literals inside brackets and returns a
// function restoring the previous state.
func (p *parser) allowLiterals() func() {
	saved := p.noLit
	p.noLit = 0

	return func() { p.noLit = saved }
}

// startsOperand reports whether the next token can begin an operand.
func (p *parser) startsOperand() bool {
	tok := p.lex.peek()

	switch tok.kind {
	case tokEOF:
		return false
	case tokOp:
		switch tok.text {
		case "(", "[", "-", "+", "!", "^", "*", "&":
			return true
		case "{":
			return p.noLit == 0
		}

		return false
	case tokIdent:
		return tok.text != "else"
	default:
		return true
	}
}

func (p *parser) parseExpr() Expr {
	if p.isOp("..") || p.isOp("..=") {
		op := p.lex.next()

		r := &Range{OpPos: op.pos, Inclusive: op.text == "..="}
		if p.startsOperand() {
			r.To = p.parseBinary(1)
		}

		return r
	}

	x := p.parseBinary(1)

	if p.isOp("..") || p.isOp("..=") {
		op := p.lex.next()

		r := &Range{OpPos: op.pos, From: x, Inclusive: op.text == "..="}
		if p.startsOperand() {
			r.To = p.parseBinary(1)
		}

		return r
	}

	return x
}

func precedence(op string) int {
	switch op {
	case "||":
		return 1
	case "&&":
		return 2
	case "==", "!=", "<", "<=", ">", ">=":
		return 3
	case "+", "-", "|", "^":
		return 4
	case "*", "/", "%", "<<", ">>", "&", "&^":
		return 5
	default:
		return 0
	}
}

func (p *parser) parseBinary(prec1 int) Expr {
	x := p.parseUnary()

	for {
		tok := p.lex.peek()
		if tok.kind != tokOp {
			return x
		}

		prec := precedence(tok.text)
		if prec < prec1 {
			return x
		}

		p.lex.next()

		y := p.parseBinary(prec + 1)
		x = &Binary{Op: tok.text, X: x, Y: y}
	}
}

func (p *parser) parseUnary() Expr {
	tok := p.lex.peek()
	if tok.kind == tokOp {
		switch tok.text {
		case "-", "+", "!", "^", "*":
			p.lex.next()
			return &Unary{OpPos: tok.pos, Op: tok.text, X: p.parseUnary()}
		case "&":
			p.lex.next()
			return &Ref{OpPos: tok.pos, X: p.parseUnary()}
		}
	}

	return p.parsePostfix(p.parsePrimary())
}

func (p *parser) parsePostfix(x Expr) Expr {
	for {
		tok := p.lex.peek()
		if tok.kind != tokOp {
			return x
		}

		switch tok.text {
		case "(":
			p.lex.next()
			args := p.parseList(")")

			switch fun := x.(type) {
			case *Ident:
				if fun.Type != nil {
					throw(tok.pos, ErrSyntax, "annotated identifier %s cannot be called", fun.Name)
				}

				x = &Call{Fun: fun, Args: args}
			case *QualName:
				x = &Call{Fun: fun, Args: args}
			case *Opaque:
				// an immediately invoked closure stays opaque
			default:
				panic(unsupported(tok.pos, "call of a computed function"))
			}
		case ".":
			p.lex.next()

			name := p.expectIdent()
			if p.accept("(") {
				x = &MethodCall{Recv: x, Name: name.text, Args: p.parseList(")")}
			} else {
				x = &FieldAccess{X: x, Name: name.text}
			}
		case "[":
			p.lex.next()

			restore := p.allowLiterals()
			idx := p.parseExpr()
			restore()

			p.expect("]")

			x = &Index{X: x, Index: idx}
		case "?":
			p.lex.next()

			x = &Try{X: x}
		default:
			return x
		}
	}
}

func (p *parser) parsePrimary() Expr {
	tok := p.lex.next()

	switch tok.kind {
	case tokInt:
		return &BasicLit{ValuePos: tok.pos, Kind: LitInt, Value: tok.text}
	case tokFloat:
		return &BasicLit{ValuePos: tok.pos, Kind: LitFloat, Value: tok.text}
	case tokString:
		return &BasicLit{ValuePos: tok.pos, Kind: LitString, Value: tok.text}
	case tokRune:
		return &BasicLit{ValuePos: tok.pos, Kind: LitRune, Value: tok.text}
	case tokIdent:
		return p.parseName(tok)
	case tokOp:
		switch tok.text {
		case "(":
			return p.parseParen(tok)
		case "[":
			return p.parseArray(tok)
		case "{":
			return p.parseBlockBody(tok)
		}
	}

	throw(tok.pos, ErrSyntax, "unexpected %s", describe(tok))

	return nil
}

func (p *parser) parseName(tok token) Expr {
	switch {
	case tok.text == "true" || tok.text == "false":
		return &BasicLit{ValuePos: tok.pos, Kind: LitBool, Value: tok.text}
	case tok.text == "if":
		return p.parseIf(tok)
	case opaqueKeywords[tok.text]:
		return p.parseOpaque(tok)
	case tok.text == "else":
		throw(tok.pos, ErrSyntax, "else without if")
	case predeclaredTypes[tok.text] && p.isOp("("):
		p.lex.next()
		return p.parseCast(&TypeExpr{TypePos: tok.pos, Text: tok.text})
	}

	if p.accept(":") {
		return &Ident{NamePos: tok.pos, Name: tok.text, Type: p.parseType()}
	}

	typeName := tok.text

	var x Expr = &Ident{NamePos: tok.pos, Name: tok.text}

	if p.accept(".") {
		sel := p.expectIdent()
		typeName += "." + sel.text
		x = &QualName{NamePos: tok.pos, Pkg: tok.text, Name: sel.text}
	}

	if p.isOp("{") && p.noLit == 0 {
		return p.parseStructLit(&TypeExpr{TypePos: tok.pos, Text: typeName})
	}

	return x
}

func (p *parser) parseCast(typ *TypeExpr) Expr {
	args := p.parseList(")")
	if len(args) != 1 {
		throw(typ.TypePos, ErrSyntax, "conversion to %s takes exactly one argument", typ.Text)
	}

	return &Cast{Type: typ, X: args[0]}
}

// parseList parses comma separated expressions up to and including close.
func (p *parser) parseList(closer string) []Expr {
	restore := p.allowLiterals()
	defer restore()

	var list []Expr

	for !p.isOp(closer) {
		list = append(list, p.parseExpr())

		if !p.accept(",") {
			break
		}
	}

	p.expect(closer)

	return list
}

func (p *parser) parseParen(lparen token) Expr {
	restore := p.allowLiterals()
	defer restore()

	if p.isOp(")") {
		throw(lparen.pos, ErrSyntax, "empty parentheses")
	}

	first := p.parseExpr()
	if !p.accept(",") {
		p.expect(")")
		return &Paren{Lparen: lparen.pos, X: first}
	}

	elems := []Expr{first}

	for !p.isOp(")") {
		elems = append(elems, p.parseExpr())

		if !p.accept(",") {
			break
		}
	}

	p.expect(")")

	if len(elems) < 2 {
		throw(lparen.pos, ErrSyntax, "tuple needs at least two elements")
	}

	return &Tuple{Lparen: lparen.pos, Elems: elems}
}

// parseArray parses everything that starts with '[': typed array and slice
// literals, conversions to slice types and bare element lists.
func (p *parser) parseArray(lbrack token) Expr {
	prefix, ok := p.arrayTypePrefix()
	if !ok {
		return &ArrayLit{Lbrack: lbrack.pos, Elems: p.parseList("]")}
	}

	typ := &TypeExpr{TypePos: lbrack.pos, Text: prefix + p.typeText()}

	if p.accept("(") {
		return p.parseCast(typ)
	}

	p.expect("{")

	return &ArrayLit{Lbrack: lbrack.pos, Type: typ, Elems: p.parseList("}")}
}

// arrayTypePrefix consumes "]" or "N]" when they start an array type.
func (p *parser) arrayTypePrefix() (string, bool) {
	if p.accept("]") {
		return "[]", true
	}

	if p.lex.peek().kind != tokInt {
		return "", false
	}

	mark := p.lex.mark()
	n := p.lex.next()

	if p.accept("]") {
		next := p.lex.peek()
		if next.kind == tokIdent || (next.kind == tokOp && (next.text == "[" || next.text == "*")) {
			return "[" + n.text + "]", true
		}
	}

	p.lex.reset(mark)

	return "", false
}

func (p *parser) parseType() *TypeExpr {
	pos := p.lex.peek().pos
	return &TypeExpr{TypePos: pos, Text: p.typeText()}
}

func (p *parser) typeText() string {
	tok := p.lex.next()

	switch {
	case tok.kind == tokOp && tok.text == "*":
		return "*" + p.typeText()
	case tok.kind == tokOp && tok.text == "[":
		if p.accept("]") {
			return "[]" + p.typeText()
		}

		n := p.lex.next()
		if n.kind != tokInt {
			throw(n.pos, ErrSyntax, "expected array length, found %s", describe(n))
		}

		p.expect("]")

		return "[" + n.text + "]" + p.typeText()
	case tok.kind == tokIdent:
		name := tok.text
		if p.accept(".") {
			name += "." + p.expectIdent().text
		}

		if p.accept("[") {
			var args []string

			for !p.isOp("]") {
				args = append(args, p.typeText())

				if !p.accept(",") {
					break
				}
			}

			p.expect("]")

			name += "[" + strings.Join(args, ", ") + "]"
		}

		return name
	}

	throw(tok.pos, ErrSyntax, "expected type, found %s", describe(tok))

	return ""
}

func (p *parser) parseStructLit(typ *TypeExpr) Expr {
	p.expect("{")

	restore := p.allowLiterals()
	defer restore()

	lit := &StructLit{Type: typ}

	var keyed, positional bool

	for !p.isOp("}") {
		if p.isOp("..") {
			p.lex.next()
			lit.Rest = p.parseExpr()
			p.accept(",")

			if !p.isOp("}") {
				throw(p.lex.peek().pos, ErrSyntax, "..rest must be the last element of a struct literal")
			}

			break
		}

		kv := p.parseElement()
		if kv.Key == "" {
			positional = true
		} else {
			keyed = true
		}

		if keyed && positional {
			throw(kv.KeyPos, ErrSyntax, "mixture of field:value and value elements in struct literal")
		}

		lit.Fields = append(lit.Fields, kv)

		if !p.accept(",") {
			break
		}
	}

	p.expect("}")

	if lit.Rest != nil && positional {
		throw(typ.TypePos, ErrSyntax, "..rest requires keyed elements")
	}

	return lit
}

func (p *parser) parseElement() *KeyValue {
	tok := p.lex.peek()

	if tok.kind == tokIdent && tok.text != "true" && tok.text != "false" && tok.text != "nil" {
		mark := p.lex.mark()
		p.lex.next()

		if p.accept(":") {
			return &KeyValue{KeyPos: tok.pos, Key: tok.text, Value: p.parseExpr()}
		}

		if p.isOp(",") || p.isOp("}") {
			return &KeyValue{
				KeyPos:    tok.pos,
				Key:       tok.text,
				Value:     &Ident{NamePos: tok.pos, Name: tok.text},
				Shorthand: true,
			}
		}

		p.lex.reset(mark)
	}

	return &KeyValue{KeyPos: tok.pos, Value: p.parseExpr()}
}

func (p *parser) parseIf(ifTok token) Expr {
	p.noLit++
	cond := p.parseExpr()
	p.noLit--

	then := p.parseBlock()

	if !p.isKeyword("else") {
		throw(ifTok.pos, ErrSyntax, "if expression requires an else branch")
	}

	p.lex.next()

	var els Expr
	if p.isKeyword("if") {
		els = p.parseIf(p.lex.next())
	} else {
		els = p.parseBlock()
	}

	return &If{IfPos: ifTok.pos, Cond: cond, Then: then, Else: els}
}

func (p *parser) parseBlock() *Block {
	lbrace := p.expect("{")
	return p.parseBlockBody(lbrace)
}

func (p *parser) parseBlockBody(lbrace token) *Block {
	restore := p.allowLiterals()
	defer restore()

	b := &Block{Lbrace: lbrace.pos}

	for !p.isOp("}") {
		if p.lex.peek().kind == tokEOF {
			throw(lbrace.pos, ErrSyntax, "block not terminated")
		}

		if stmt := p.parseDecl(); stmt != nil {
			b.Stmts = append(b.Stmts, stmt)
			p.accept(";")

			continue
		}

		x := p.parseExpr()

		if p.isOp(":=") || p.isOp("=") {
			p.lex.next()

			b.Stmts = append(b.Stmts, &LetStmt{KeyPos: x.Pos(), Names: bindingNames(x), Value: p.parseExpr()})
			p.accept(";")

			continue
		}

		if p.accept(";") {
			b.Stmts = append(b.Stmts, &ExprStmt{X: x})
			continue
		}

		b.Value = x

		break
	}

	p.expect("}")

	return b
}

// parseDecl parses a var binding or skips a nested declaration.
func (p *parser) parseDecl() Stmt {
	tok := p.lex.peek()
	if tok.kind != tokIdent {
		return nil
	}

	switch {
	case tok.text == "var":
		p.lex.next()

		var names []string
		for p.lex.peek().kind == tokIdent {
			names = append(names, p.lex.next().text)
			if !p.accept(",") {
				break
			}
		}

		if p.accept(":") || p.lex.peek().kind == tokIdent {
			p.typeText()
		}

		stmt := &LetStmt{KeyPos: tok.pos, Names: names}
		if p.accept("=") {
			stmt.Value = p.parseExpr()
		}

		return stmt
	case declKeywords[tok.text]:
		p.lex.next()
		p.skipStatement()

		return &DeclStmt{KeyPos: tok.pos, Keyword: tok.text}
	}

	return nil
}

func bindingNames(x Expr) []string {
	if id, ok := x.(*Ident); ok {
		return []string{id.Name}
	}

	return nil
}

// skipStatement consumes tokens up to the end of the current statement: a ';'
// or a closing brace at depth zero, or the end of a braced body.
func (p *parser) skipStatement() {
	depth := 0

	for {
		tok := p.lex.peek()

		switch {
		case tok.kind == tokEOF:
			return
		case tok.kind != tokOp:
		case tok.text == "(" || tok.text == "[" || tok.text == "{":
			depth++
		case tok.text == ")" || tok.text == "]":
			depth--
		case tok.text == "}":
			if depth == 0 {
				return
			}

			depth--
			if depth == 0 {
				p.lex.next()
				return
			}
		case tok.text == ";" && depth == 0:
			return
		}

		p.lex.next()
	}
}

// parseOpaque skips a loop, switch-like construct or closure up to the end of
// its body.
func (p *parser) parseOpaque(kw token) Expr {
	depth := 0

	for {
		tok := p.lex.next()

		switch {
		case tok.kind == tokEOF:
			throw(kw.pos, ErrSyntax, "%s body not terminated", kw.text)
		case tok.kind != tokOp:
		case tok.text == "(" || tok.text == "[":
			depth++
		case tok.text == ")" || tok.text == "]":
			depth--
		case tok.text == "{":
			if depth == 0 {
				p.skipBody()
				return &Opaque{KeyPos: kw.pos, Keyword: kw.text}
			}

			depth++
		case tok.text == "}":
			depth--
		}
	}
}

// skipBody consumes tokens up to and including the brace closing an already
// consumed '{'.
func (p *parser) skipBody() {
	depth := 1

	for depth > 0 {
		tok := p.lex.next()

		switch {
		case tok.kind == tokEOF:
			throw(tok.pos, ErrSyntax, "block not terminated")
		case tok.kind == tokOp && tok.text == "{":
			depth++
		case tok.kind == tokOp && tok.text == "}":
			depth--
		}
	}
}
