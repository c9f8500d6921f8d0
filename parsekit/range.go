package parsekit

import "iter"

// Range is an integer interval built by a range expression (lo..hi, lo..=hi,
// lo.. or ..hi). A missing lower bound is the zero value.
type Range[T Integer] struct {
	Start     T
	End       T
	HasEnd    bool
	Inclusive bool
}

// Span returns the half-open range [start, end).
func Span[T Integer](start, end T) Range[T] {
	return Range[T]{Start: start, End: end, HasEnd: true}
}

// SpanInclusive returns the closed range [start, end].
func SpanInclusive[T Integer](start, end T) Range[T] {
	return Range[T]{Start: start, End: end, HasEnd: true, Inclusive: true}
}

// SpanFrom returns the range starting at start with no upper bound.
func SpanFrom[T Integer](start T) Range[T] {
	return Range[T]{Start: start}
}

// SpanTo returns the half-open range [0, end).
func SpanTo[T Integer](end T) Range[T] {
	return Range[T]{End: end, HasEnd: true}
}

// Contains reports whether v lies within the range.
func (r Range[T]) Contains(v T) bool {
	if v < r.Start {
		return false
	}

	switch {
	case !r.HasEnd:
		return true
	case r.Inclusive:
		return v <= r.End
	default:
		return v < r.End
	}
}

// Values yields the members of the range in ascending order. Unbounded ranges
// stop at the largest value of T.
func (r Range[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := r.Start; r.Contains(v); v++ {
			if !yield(v) {
				return
			}

			if v+1 < v {
				return
			}
		}
	}
}

// Len returns the number of members of the range. It is 0 for a range with
// no upper bound.
func (r Range[T]) Len() int {
	if !r.HasEnd || r.End < r.Start {
		return 0
	}

	n := int(uint64(r.End) - uint64(r.Start))
	if r.Inclusive {
		n++
	}

	return n
}

// Sum adds up the members of the range, wrapping on overflow like T does. It
// is 0 for a range with no upper bound.
func (r Range[T]) Sum() T {
	var total T
	if !r.HasEnd {
		return total
	}

	for v := range r.Values() {
		total += v
	}

	return total
}
