package directives

import (
	"net/netip"
	"time"
)

//parsegen:pattern ^#(?P<id>\d+) (?P<name>\w+)$
type Record struct {
	ID   int    `parsegen:"id"`
	Name string
	Note string `parsegen:"-"`
	//parsegen:with id * 2
	Double int
	Wait   time.Duration
	Addr   *netip.Addr
	Raw    []byte
	Inner  Meters
}

//parsegen:pattern ^(?P<0>\d+)m$
type Meters uint32

// Shape is drawn on a board.
//
//parsegen:variant Circle ^circle (?P<r>\d+)$
//parsegen:variant *Square ^square (?P<side>\d+)$
//parsegen:variant Nothing ^none$
type Shape interface{ isShape() }

type Circle struct {
	R float64 `parsegen:"r"`
}

type Square struct{ Side int }

type Nothing struct{}

func (Circle) isShape()  {}
func (*Square) isShape() {}
func (Nothing) isShape() {}

//parsegen:variant Missing ^x$
//parsegen:variant Square ^y$
//parsegen:variant
//parsegen:bogus
type Broken interface{ isShape() }

// Plain has no directives.
type Plain struct{ A int }
