// Package diagnostic provides coded errors, warnings and notes reported while
// resolving and generating parsers.
//
// Diagnostics are attached to a type (and optionally a field) so that a
// failure in one type never hides the results of another.
package diagnostic
