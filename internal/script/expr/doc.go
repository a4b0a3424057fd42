// Package expr evaluates the small expression language used in script
// arguments.
//
// Expressions are parsed and run by expr-lang/expr with its builtins turned
// off. Variable reads, arithmetic, comparisons, boolean logic, indexing and
// slicing are rewritten into calls of this package's functions, so the
// language keeps its own rules: integer division is exact or falls back to
// float, modulo follows the divisor's sign, strings repeat with *, indexes
// count runes and may be negative, and any value can be a condition.
// Both && || ! and and/or/not are accepted, as are True, False and None.
//
// Only a fixed set of functions is callable: len, str, int, float, upper,
// lower, trim, join, split and replace.
package expr
