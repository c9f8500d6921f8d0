package gen

import (
	"fmt"
	"strconv"
	"strings"

	"parsegen/internal/schema"
)

// convertFunc returns the parse function that converts captured text to t.
func convertFunc(t schema.TypeRef) (string, error) {
	switch t.Kind {
	case schema.KindString:
		return "parsekit.ParseString[" + t.Expr + "]", nil
	case schema.KindInt:
		return "parsekit.ParseInt[" + t.Expr + "]", nil
	case schema.KindUint:
		return "parsekit.ParseUint[" + t.Expr + "]", nil
	case schema.KindFloat:
		return "parsekit.ParseFloat[" + t.Expr + "]", nil
	case schema.KindBool:
		return "parsekit.ParseBool[" + t.Expr + "]", nil
	case schema.KindBytes:
		return "parsekit.ParseBytes", nil
	case schema.KindDuration:
		return "parsekit.ParseDuration", nil
	case schema.KindParser:
		return t.Parser, nil
	case schema.KindText:
		return "parsekit.ParseText[" + t.Expr + "]", nil
	default:
		return "", fmt.Errorf("no conversion from captured text to %s (%s)", t.Expr, t.Kind)
	}
}

// fetch returns the call that reads and converts the named group into a
// value of type t. Pointers to scalars use GetOptional.
func fetch(group string, t schema.TypeRef) (string, error) {
	getter, target := "parsekit.Get", t
	if t.Optional() {
		getter, target = "parsekit.GetOptional", *t.Elem
	}

	conv, err := convertFunc(target)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s(ex, %s, %s)", getter, strconv.Quote(group), conv), nil
}

// patternLiteral returns p as a Go string literal, raw when possible.
func patternLiteral(p string) string {
	if strings.Contains(p, "`") || strings.ContainsRune(p, '\r') {
		return strconv.Quote(p)
	}

	return "`" + p + "`"
}
