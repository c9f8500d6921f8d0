package parsekit

import (
	"fmt"
	"regexp"
)

// Extractor exposes the named captures of one successful match.
type Extractor struct {
	re    *regexp.Regexp
	input string
	loc   []int
}

// Match matches re against input. ErrNoMatch is returned when re does not
// match.
func Match(re *regexp.Regexp, input string) (*Extractor, error) {
	loc := re.FindStringSubmatchIndex(input)
	if loc == nil {
		return nil, ErrNoMatch
	}

	return &Extractor{re: re, input: input, loc: loc}, nil
}

// Lookup returns the text captured by the named group. ok is false when the
// group exists but did not participate in the match.
func (e *Extractor) Lookup(name string) (text string, ok bool, err error) {
	idx := e.re.SubexpIndex(name)
	if idx < 0 {
		return "", false, fmt.Errorf("%w %s", ErrUnknownGroup, name)
	}

	start, end := e.loc[2*idx], e.loc[2*idx+1]
	if start < 0 {
		return "", false, nil
	}

	return e.input[start:end], true, nil
}

// Input returns the matched input.
func (e *Extractor) Input() string {
	return e.input
}

// Get fetches the named capture and converts it with parse.
func Get[T any](e *Extractor, name string, parse func(string) (T, error)) (T, error) {
	var zero T

	text, ok, err := e.Lookup(name)
	if err != nil {
		return zero, err
	}

	if !ok {
		return zero, fmt.Errorf("capture %q: %w", name, ErrMissingCapture)
	}

	v, err := parse(text)
	if err != nil {
		return zero, fmt.Errorf("capture %q: %w", name, err)
	}

	return v, nil
}

// GetOptional is like Get but returns nil when the group did not participate
// in the match.
func GetOptional[T any](e *Extractor, name string, parse func(string) (T, error)) (*T, error) {
	text, ok, err := e.Lookup(name)
	if err != nil || !ok {
		return nil, err
	}

	v, err := parse(text)
	if err != nil {
		return nil, fmt.Errorf("capture %q: %w", name, err)
	}

	return &v, nil
}
