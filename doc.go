// Package calc implements an exact-decimal arithmetic calculator.
//
// Expressions use the infix operators + - * / % and ** with parentheses for
// grouping. "2 ** 3 ** 2" is "2 ** (3 ** 2)", where "a ** b" is
// exponentiation. A sign at the start of an expression, directly after an
// open parenthesis, or directly after another operator belongs to the number
// that follows it, so "3--2" is "3 - (-2)".
// A sign before an open parenthesis multiplies the group by ±1; after "**"
// it stays with the exponent, so "2 ** -(3)" is "2 ** (-3)".
//
// Numbers are exact rationals, so "0.1 + 0.2" is exactly 0.3. Only powers
// with non-integer exponents are approximated.
//
// Evaluation converts the tokens to postfix with the Shunting Yard algorithm
// and runs the postfix sequence on a value stack. Nothing is shared between
// calls, so every function in the package is safe for concurrent use.
package calc
