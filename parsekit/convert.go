package parsekit

import (
	"encoding"
	"math"
	"strconv"
	"time"
)

// Signed is the set of signed integer types.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is the set of unsigned integer types.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is the set of integer types.
type Integer interface {
	Signed | Unsigned
}

// Float is the set of floating-point types.
type Float interface {
	~float32 | ~float64
}

// ParseInt parses a base 10 signed integer that fits in T.
func ParseInt[T Signed](s string) (T, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}

	if int64(T(v)) != v {
		return 0, rangeError("ParseInt", s)
	}

	return T(v), nil
}

// ParseUint parses a base 10 unsigned integer that fits in T.
func ParseUint[T Unsigned](s string) (T, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}

	if uint64(T(v)) != v {
		return 0, rangeError("ParseUint", s)
	}

	return T(v), nil
}

// ParseFloat parses a floating-point number with the precision of T.
func ParseFloat[T Float](s string) (T, error) {
	bits := 64

	largest := math.MaxFloat64
	if math.IsInf(float64(T(largest)), 0) {
		bits = 32
	}

	v, err := strconv.ParseFloat(s, bits)
	if err != nil {
		return 0, err
	}

	return T(v), nil
}

// ParseBool parses a boolean as accepted by strconv.ParseBool.
func ParseBool[T ~bool](s string) (T, error) {
	v, err := strconv.ParseBool(s)

	return T(v), err
}

// ParseString converts the captured text to T. It never fails.
func ParseString[T ~string](s string) (T, error) {
	return T(s), nil
}

// ParseBytes returns a copy of the captured text as a byte slice.
func ParseBytes(s string) ([]byte, error) {
	return []byte(s), nil
}

// ParseDuration parses a duration as accepted by time.ParseDuration.
func ParseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

// ParseText parses T through its encoding.TextUnmarshaler implementation.
func ParseText[T any, PT interface {
	*T
	encoding.TextUnmarshaler
}](s string) (T, error) {
	var v T

	err := PT(&v).UnmarshalText([]byte(s))

	return v, err
}

func rangeError(fn, s string) error {
	return &strconv.NumError{Func: fn, Num: s, Err: strconv.ErrRange}
}
