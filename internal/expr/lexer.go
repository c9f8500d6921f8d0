package expr

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokRune
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// operators sorted so that longer operators are tried first.
var operators = []string{
	"..=", "&^",
	"..", "&&", "||", "==", "!=", "<=", ">=", "<<", ">>", ":=",
	"+", "-", "*", "/", "%", "&", "|", "^", "<", ">", "!", "=",
	"(", ")", "[", "]", "{", "}", ",", ":", ";", ".", "?",
}

type lexer struct {
	src    string
	pos    int
	peeked *token
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) peek() token {
	if l.peeked == nil {
		tok := l.scan()
		l.peeked = &tok
	}

	return *l.peeked
}

func (l *lexer) next() token {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil

		return tok
	}

	return l.scan()
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])

		switch {
		case unicode.IsSpace(r):
			l.pos += size
		case strings.HasPrefix(l.src[l.pos:], "//"):
			end := strings.IndexByte(l.src[l.pos:], '\n')
			if end < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += end
			}
		default:
			return
		}
	}
}

func (l *lexer) scan() token {
	l.skipSpace()

	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}
	}

	start := l.pos
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])

	switch {
	case r == '_' || unicode.IsLetter(r):
		for l.pos < len(l.src) {
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}

			l.pos += size
		}

		return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}
	case '0' <= r && r <= '9':
		return l.scanNumber()
	case r == '"' || r == '\'':
		return l.scanQuoted(byte(r))
	case r == '`':
		end := strings.IndexByte(l.src[start+1:], '`')
		if end < 0 {
			throw(start, ErrSyntax, "raw string literal not terminated")
		}

		l.pos = start + 1 + end + 1

		return token{kind: tokString, text: l.src[start:l.pos], pos: start}
	}

	for _, op := range operators {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.pos += len(op)
			return token{kind: tokOp, text: op, pos: start}
		}
	}

	throw(start, ErrSyntax, "unexpected character %q", r)

	return token{}
}

func (l *lexer) scanNumber() token {
	start := l.pos
	kind := tokInt

	digits := func() {
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
	}

	if strings.HasPrefix(l.src[l.pos:], "0x") || strings.HasPrefix(l.src[l.pos:], "0X") {
		l.pos += 2
		for l.pos < len(l.src) && (isHex(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}

		return token{kind: kind, text: l.src[start:l.pos], pos: start}
	}

	digits()

	// A '.' followed by another '.' starts a range operator.
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && l.src[l.pos+1] != '.' && isDigit(l.src[l.pos+1]) {
		kind = tokFloat
		l.pos++
		digits()
	}

	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		kind = tokFloat
		l.pos++

		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}

		digits()
	}

	return token{kind: kind, text: l.src[start:l.pos], pos: start}
}

func (l *lexer) scanQuoted(quote byte) token {
	start := l.pos
	l.pos++

	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '\n':
			throw(start, ErrSyntax, "literal not terminated")
		case quote:
			l.pos++

			kind := tokString
			if quote == '\'' {
				kind = tokRune
			}

			return token{kind: kind, text: l.src[start:l.pos], pos: start}
		}

		l.pos++
	}

	throw(start, ErrSyntax, "literal not terminated")

	return token{}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// mark returns the lexer state for a later reset.
func (l *lexer) mark() lexer {
	return *l
}

func (l *lexer) reset(m lexer) {
	*l = m
}
