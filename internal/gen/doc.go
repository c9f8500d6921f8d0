// Package gen provides deterministic Go code generation for parse functions.
//
// Generation uses text/template for the file layout and a lowering pass for
// construction expressions; the result is formatted with x/tools/imports,
// which also adds imports for packages named in expressions.
//
// Codegen patterns:
//   - Capture conversion through parsekit.Get / parsekit.GetOptional
//   - Capture fetches hoisted into temporaries with an error check each
//   - If expressions lowered to if statements assigning a typed temporary
//   - Short-circuit && and || around right operands with statements
//   - Struct update lowered to copy-then-assign
//   - Unions dispatched through a parsekit.Set, first match wins
package gen
