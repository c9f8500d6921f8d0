package parsekit

import (
	"regexp"
	"sync"
)

// Set is an ordered collection of patterns that answers which of them match an
// input. Members are compiled once, on first use.
type Set struct {
	cache    *Cache
	patterns []string

	once     sync.Once
	compiled []*regexp.Regexp
	err      error
}

// NewSet returns a Set over patterns. Compiled members are shared with cache
// when it is non-nil.
func NewSet(cache *Cache, patterns ...string) *Set {
	return &Set{cache: cache, patterns: patterns}
}

// Len returns the number of patterns in the set.
func (s *Set) Len() int {
	return len(s.patterns)
}

// Pattern returns the i-th pattern.
func (s *Set) Pattern(i int) string {
	return s.patterns[i]
}

func (s *Set) compile() error {
	s.once.Do(func() {
		s.compiled = make([]*regexp.Regexp, len(s.patterns))

		for i, p := range s.patterns {
			var re *regexp.Regexp

			var err error
			if s.cache != nil {
				re, err = s.cache.Compile(p)
			} else {
				re, err = regexp.Compile(p)
			}

			if err != nil {
				s.err = err
				return
			}

			s.compiled[i] = re
		}
	})

	return s.err
}

// Matches returns the indexes of all patterns that match input, in order.
func (s *Set) Matches(input string) ([]int, error) {
	if err := s.compile(); err != nil {
		return nil, err
	}

	var idx []int

	for i, re := range s.compiled {
		if re.MatchString(input) {
			idx = append(idx, i)
		}
	}

	return idx, nil
}

// First returns the index of the first pattern that matches input.
// ErrNoMatch is returned when none does.
func (s *Set) First(input string) (int, error) {
	if err := s.compile(); err != nil {
		return -1, err
	}

	for i, re := range s.compiled {
		if re.MatchString(input) {
			return i, nil
		}
	}

	return -1, ErrNoMatch
}
