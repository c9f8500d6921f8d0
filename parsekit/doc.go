// Package parsekit is the runtime support imported by code that parsegen
// generates.
//
// Generated Parse functions match their input against a pattern held in a
// Cache, pull named captures out of the match with Get or GetOptional and
// convert them with one of the Parse* conversion functions. Tagged unions use
// a Set to find the first variant whose pattern matches.
//
// Every failure is returned as an *Error naming the type (and field) being
// parsed; errors.Is(err, ErrNoMatch) reports a format mismatch.
package parsekit
