// Package schema describes the types a parser file is generated for.
//
// A Schema is produced by a front end: the Go-source loader in
// internal/analyze, or a YAML schema file loaded with LoadFile.
//
// # Schema file
//
//	package: shapes
//	imports:
//	  geo: example.com/geo
//	types:
//	  - name: Rectangle
//	    pattern: '^#(?P<id>\d+) @ (?P<x>\d+),(?P<y>\d+): (?P<width>\d+)x(?P<height>\d+)$'
//	    fields:
//	      - {name: ID, type: int, capture: id}
//	      - X int
//	      - Y int
//	      - {name: Area, type: int, with: "width: int * height: int"}
//	  - name: Meters
//	    pattern: '^(?P<0>\d+)m$'
//	    newtype: int
//	  - name: Command
//	    variants:
//	      - {name: Quit, pattern: '^quit$'}
//	      - {name: Move, pattern: '^move (?P<0>-?\d+)$', newtype: int}
//
// A type with variants is a union, a type with newtype is a newtype, and a
// type with neither fields nor newtype is a unit. Fields accept the mapping
// form or the "Name Type" shorthand.
package schema
