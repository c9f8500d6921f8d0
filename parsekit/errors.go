package parsekit

import "errors"

var (
	// ErrNoMatch is returned when the input does not match the pattern of the
	// type being parsed (or of any of its variants).
	ErrNoMatch = errors.New("input does not match expected format")
	// ErrMissingCapture is returned when a referenced capture group exists but
	// did not participate in the match.
	ErrMissingCapture = errors.New("capture group did not participate in the match")
	// ErrUnknownGroup is returned when a referenced capture group does not
	// exist in the pattern.
	ErrUnknownGroup = errors.New("no capture group named")
)

// Error is returned by generated Parse functions.
type Error struct {
	// Type is the name of the type being parsed.
	Type string
	// Field is the field being constructed, empty for whole-input failures.
	Field string
	// Err is the underlying failure.
	Err error
}

// Fail wraps err into an *Error for the given type and field.
func Fail(typ, field string, err error) error {
	return &Error{Type: typ, Field: field, Err: err}
}

func (e *Error) Error() string {
	where := e.Type
	if e.Field != "" {
		where += "." + e.Field
	}

	return "parse " + where + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
