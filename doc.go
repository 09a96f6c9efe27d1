// Package scicalc implements the arithmetic behind a scientific calculator:
// a lexer and parser for calculator-style expressions and an
// arbitrary-precision evaluator for the resulting trees.
//
// The syntax is what you'd type on a calculator keypad. "2×3", "2*3", and
// "2 3" are all multiplications, as are "2π", "2(1+1)", and "3!2". "÷" and
// "/" divide. "-2^2^n" is the same as "-(2^(2^n))", where "a^b" is
// exponentiation. A postfix "!" is the factorial of the operand immediately
// before it, so "3!+2" is 8 and "2^3!" is 64. "√x" and "√(x)" are square
// roots. "e" is Euler's number only where it stands alone as a name; the e
// in "1e5" belongs to the number.
//
// Nothing is evaluated as code. Parsing produces a tree over a fixed set of
// operators and functions, and evaluation walks the tree.
//
// Variables let you parse an expression once and evaluate it for many inputs,
// or you can clone contexts for several expressions to use the same variable
// definitions everywhere.
package scicalc
