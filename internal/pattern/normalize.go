package pattern

import (
	"regexp"
	"regexp/syntax"
)

// RepairPrefix is inserted in front of group names that start with a digit.
const RepairPrefix = "__"

// ErrDuplicateName is the syntax error code for a capture group name used twice.
const ErrDuplicateName syntax.ErrorCode = "duplicate capture group name"

// Result is the outcome of a successful normalization.
type Result struct {
	// Pattern is the normalized pattern.
	Pattern string
	// Renamed lists the original names of the repaired groups, in repair order.
	Renamed []string
	// Attempts is the number of times the pattern was checked.
	Attempts int
}

// Group is a named capture group of a compiled pattern.
type Group struct {
	Name string
	// Index is the 1-based submatch index.
	Index int
}

// Normalize returns p with every capture group name that starts with a digit
// prefixed by "__". Any other problem with p is returned as an *Error.
func Normalize(p string) (string, error) {
	res, err := Detail(p)
	if err != nil {
		return "", err
	}

	return res.Pattern, nil
}

// Detail is Normalize that also reports what was repaired.
//
// The pattern is checked, the first repairable group name is fixed and the
// check repeats; a pattern with k repairable names is checked k+1 times.
func Detail(p string) (Result, error) {
	res := Result{Pattern: p}

	for {
		res.Attempts++

		perr := check(res.Pattern)
		if perr == nil {
			return res, nil
		}

		if perr.Kind != KindGroupNameInvalid {
			perr.Pattern = p
			return Result{}, perr
		}

		res.Pattern = res.Pattern[:perr.Offset] + RepairPrefix + res.Pattern[perr.Offset:]
		res.Renamed = append(res.Renamed, perr.Name)
	}
}

// check validates p and reports the first problem found.
func check(p string) *Error {
	if _, err := syntax.Parse(p, syntax.Perl); err != nil {
		return &Error{Kind: KindSyntax, Pattern: p, Err: err}
	}

	seen := make(map[string]bool)

	for _, g := range scanGroupNames(p) {
		if seen[g.Name] {
			return &Error{
				Kind:    KindSyntax,
				Pattern: p,
				Err:     &syntax.Error{Code: ErrDuplicateName, Expr: g.Name},
			}
		}

		seen[g.Name] = true

		if isIdentStart(g.Name[0]) {
			continue
		}

		if !isWord(g.Name) {
			return &Error{
				Kind:    KindSyntax,
				Pattern: p,
				Err:     &syntax.Error{Code: syntax.ErrInvalidNamedCapture, Expr: g.Name},
			}
		}

		return &Error{Kind: KindGroupNameInvalid, Pattern: p, Name: g.Name, Offset: g.Offset}
	}

	return nil
}

// Groups lists the named capture groups of a valid pattern.
func Groups(p string) ([]Group, error) {
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, &Error{Kind: KindSyntax, Pattern: p, Err: err}
	}

	var groups []Group

	for i, name := range re.SubexpNames() {
		if name == "" {
			continue
		}

		groups = append(groups, Group{Name: name, Index: i})
	}

	return groups, nil
}

// Names returns just the names of groups.
func Names(groups []Group) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}

	return names
}
