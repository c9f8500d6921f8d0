// Package pattern validates and normalizes the regular expressions attached to
// parsed types.
//
// Capture groups are referenced by name from construction expressions, so a
// group name has to be a valid identifier. Names that start with a digit
// (typically positional names such as (?P<0>...)) are repaired by prefixing
// them with "__"; every other problem is reported unchanged.
package pattern
