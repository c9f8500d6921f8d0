// Package plan resolves a schema into the plan consumed by code generation.
//
// Resolution pipeline:
//  1. Validate the schema; types with errors are reported and skipped
//  2. Normalize each pattern and list its capture groups
//  3. For each field:
//     - Skip fields marked as skipped
//     - Rewrite construction expressions against the capture groups and
//     infer the types of their captures
//     - Bind the remaining fields to a capture group by explicit name, exact
//     name, normalized name or position
//  4. Emit diagnostics (unbound fields with suggestions, unused captures,
//     renamed groups)
//
// Every type is resolved on its own: an error in one type never prevents
// the others from being planned.
package plan
