package pattern

import (
	"fmt"

	"parsegen/internal/common"
)

// Kind classifies a pattern error.
type Kind int

const (
	// KindSyntax is any error reported by the regular expression parser.
	KindSyntax Kind = iota
	// KindGroupNameInvalid is a capture group name that is not an identifier
	// but can be repaired by prefixing it.
	KindGroupNameInvalid
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindGroupNameInvalid:
		return "group_name_invalid"
	default:
		return common.UnknownStr
	}
}

// Error describes why a pattern was rejected.
type Error struct {
	Kind    Kind
	Pattern string
	// Name and Offset locate the offending group name (KindGroupNameInvalid).
	Name   string
	Offset int
	// Err is the parser error (KindSyntax).
	Err error
}

func (e *Error) Error() string {
	if e.Kind == KindGroupNameInvalid {
		return fmt.Sprintf("invalid capture group name %q at offset %d", e.Name, e.Offset)
	}

	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
