// Package analyze is the Go-source front end: it loads packages with
// golang.org/x/tools/go/packages and builds a schema.Schema from parsegen
// directives.
//
// Directives are line comments on type declarations and struct fields:
//
//	//parsegen:pattern ^(?P<w>\d+)x(?P<h>\d+)$
//	type Size struct {
//		W int `parsegen:"w"`
//		H int `parsegen:"h"`
//		//parsegen:with w * h
//		Area int
//		Note string `parsegen:"-"`
//	}
//
//	//parsegen:variant Quit ^quit$
//	//parsegen:variant *Move ^move (?P<0>-?\d+)$
//	type Command interface{ isCommand() }
//
// Field types are classified with go/types: types with a generated parser
// first, then encoding.TextUnmarshaler, time.Duration and finally the
// structure of the type.
package analyze
