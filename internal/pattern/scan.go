package pattern

import "strings"

// groupName is a named capture group found by scanGroupNames.
type groupName struct {
	Name string
	// Offset is the byte offset of the first character of the name.
	Offset int
}

// scanGroupNames returns the names of all named capture groups in source
// order. Escaped characters, \Q...\E literals and character classes are
// skipped, so text such as \(?P<0> is never reported.
func scanGroupNames(p string) []groupName {
	var names []groupName

	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '\\':
			i = skipEscape(p, i)
		case '[':
			i = skipClass(p, i)
		case '(':
			start := nameStart(p, i)
			if start < 0 {
				continue
			}

			end := strings.IndexByte(p[start:], '>')
			if end < 0 {
				return names
			}

			names = append(names, groupName{Name: p[start : start+end], Offset: start})
			i = start + end
		}
	}

	return names
}

// nameStart returns the offset of the group name when p[i] opens a named
// group, or -1.
func nameStart(p string, i int) int {
	rest := p[i:]

	switch {
	case strings.HasPrefix(rest, "(?P<"):
		return i + len("(?P<")
	case strings.HasPrefix(rest, "(?<"):
		return i + len("(?<")
	default:
		return -1
	}
}

// skipEscape returns the offset of the last byte of the escape starting at i.
func skipEscape(p string, i int) int {
	if i+1 >= len(p) {
		return i
	}

	if p[i+1] != 'Q' {
		return i + 1
	}

	end := strings.Index(p[i+2:], `\E`)
	if end < 0 {
		return len(p) - 1
	}

	return i + 2 + end + 1
}

// skipClass returns the offset of the ']' closing the class opened at i.
func skipClass(p string, i int) int {
	j := i + 1
	if j < len(p) && p[j] == '^' {
		j++
	}

	// A leading ']' is a literal member.
	if j < len(p) && p[j] == ']' {
		j++
	}

	for ; j < len(p); j++ {
		switch {
		case p[j] == '\\':
			j = skipEscape(p, j)
		case strings.HasPrefix(p[j:], "[:"):
			if end := strings.Index(p[j+2:], ":]"); end >= 0 {
				j += 2 + end + 1
			}
		case p[j] == ']':
			return j
		}
	}

	return len(p) - 1
}

// isIdentStart reports whether c may start an identifier.
func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// isWord reports whether every byte of s is a word character.
func isWord(s string) bool {
	for i := range len(s) {
		c := s[i]
		if !isIdentStart(c) && ('0' > c || c > '9') {
			return false
		}
	}

	return s != ""
}
