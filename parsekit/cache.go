package parsekit

import (
	"regexp"
	"sync"
)

type compileFunc = func() (*regexp.Regexp, error)

// Cache compiles patterns on first use and keeps them for the lifetime of the
// process. The zero value is ready to use and safe for concurrent use.
type Cache struct {
	entries sync.Map // pattern -> compileFunc
}

// Compile returns the compiled form of pattern, compiling it at most once.
func (c *Cache) Compile(pattern string) (*regexp.Regexp, error) {
	if f, ok := c.entries.Load(pattern); ok {
		return f.(compileFunc)()
	}

	f, _ := c.entries.LoadOrStore(pattern, sync.OnceValues(func() (*regexp.Regexp, error) {
		return regexp.Compile(pattern)
	}))

	return f.(compileFunc)()
}

// Match compiles pattern (cached) and matches it against input.
// ErrNoMatch is returned when the pattern does not match.
func (c *Cache) Match(pattern, input string) (*Extractor, error) {
	re, err := c.Compile(pattern)
	if err != nil {
		return nil, err
	}

	return Match(re, input)
}
