// Package match provides name normalization, Levenshtein distance and
// candidate ranking used to bind struct fields to capture groups and to
// suggest close names in diagnostics.
//
// Key functions:
//   - NormalizeIdent: folds identifiers for loose comparison
//   - Levenshtein: computes edit distance between strings
//   - Rank: ranks candidate names by similarity
//   - Closest: picks a "did you mean" suggestion
package match
