package expr

import (
	"fmt"

	"parsegen/internal/common"
)

// ErrorKind classifies expression errors.
type ErrorKind int

const (
	// ErrSyntax is a malformed expression.
	ErrSyntax ErrorKind = iota
	// ErrUnsupported is a construct the rewriter refuses to process.
	ErrUnsupported
	// ErrAmbiguous is an identifier that could be read both as a capture
	// reference and as something else.
	ErrAmbiguous
	// ErrUnknownCapture is a reference to a capture group that does not exist.
	ErrUnknownCapture
)

// String returns the diagnostic code for the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "expression_syntax"
	case ErrUnsupported:
		return "expression_unsupported"
	case ErrAmbiguous:
		return "expression_ambiguous"
	case ErrUnknownCapture:
		return "unknown_capture"
	default:
		return common.UnknownStr
	}
}

// Error is an expression error at a byte offset of the source.
type Error struct {
	Pos  int
	Kind ErrorKind
	// Construct names the offending construct (ErrUnsupported).
	Construct string
	Msg       string
	// Suggestion is a close capture name (ErrUnknownCapture).
	Suggestion string
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}

	return fmt.Sprintf("offset %d: %s", e.Pos, msg)
}

// throw aborts parsing; Parse recovers it into its error result.
func throw(pos int, kind ErrorKind, format string, args ...any) {
	panic(&Error{Pos: pos, Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

func unsupported(pos int, construct string) *Error {
	return &Error{
		Pos:       pos,
		Kind:      ErrUnsupported,
		Construct: construct,
		Msg:       "unsupported construct: " + construct,
	}
}
