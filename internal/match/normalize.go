package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent folds an identifier for loose comparison: separators are
// dropped and letters lowercased, so "UserID", "user_id" and "userId" all
// normalize to "userid".
func NormalizeIdent(s string) string {
	var sb strings.Builder

	sb.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

// TokenizeIdent splits an identifier into lowercase words at separators and
// case changes ("HTTPStatusCode" -> ["http", "status", "code"]).
func TokenizeIdent(s string) []string {
	runes := []rune(s)

	var (
		tokens []string
		start  = -1
	)

	flush := func(end int) {
		if start >= 0 && end > start {
			tokens = append(tokens, strings.ToLower(string(runes[start:end])))
		}

		start = -1
	}

	for i, r := range runes {
		if isSeparator(r) {
			flush(i)
			continue
		}

		if start >= 0 && wordBoundary(runes, i) {
			flush(i)
		}

		if start < 0 {
			start = i
		}
	}

	flush(len(runes))

	return tokens
}

// wordBoundary reports whether a new word starts at runes[i].
func wordBoundary(runes []rune, i int) bool {
	cur, prev := runes[i], runes[i-1]

	switch {
	case unicode.IsUpper(cur) && !unicode.IsUpper(prev):
		// orderID -> order|ID
		return true
	case unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
		// XMLParser -> XML|Parser
		return true
	case unicode.IsDigit(cur) != unicode.IsDigit(prev):
		return true
	default:
		return false
	}
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}
