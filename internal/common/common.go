// Package common holds small helpers shared by the parsegen packages.
package common

// UnknownStr is the String() value of out-of-range enum values.
const UnknownStr = "unknown"

// IsEmpty reports whether s has no elements.
func IsEmpty[S ~[]E, E any](s S) bool { return len(s) == 0 }

// IsSingle reports whether s has exactly one element, e.g. one candidate
// group for a field.
func IsSingle[S ~[]E, E any](s S) bool { return len(s) == 1 }

// IsMultiple reports whether s has more than one element.
func IsMultiple[S ~[]E, E any](s S) bool { return len(s) > 1 }

// First returns the first element of s, or false when s is empty.
func First[S ~[]E, E any](s S) (E, bool) {
	var zero E
	if len(s) == 0 {
		return zero, false
	}

	return s[0], true
}
