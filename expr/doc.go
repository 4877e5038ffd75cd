// seehuhn.de/go/raster - band algebra and colour correction for raster images
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package expr compiles band algebra expressions to bytecode and evaluates
// them per pixel.
//
// Expressions use infix notation over numbers, band references and function
// calls.  From lowest to highest precedence:
//
//	a || b             logical or
//	a && b             logical and
//	a > b, a >= b, ... comparisons (> >= < <= == !=), left-associative
//	a + b, a - b
//	a * b, a / b
//	a ^ b              power, right-associative
//	-a, +a
//
// Bands are written b1, B1, band1 or BAND1; the word "and" after the initial
// b may be surrounded by blanks ("b and 1"), but "b 1" is not a band
// reference.  Band numbers start at 1.  The compiler accepts b0, which is
// then reported as out of range when the expression is run on a dataset.
// Function names are case-insensitive: sqrt, abs, sin, cos, tan, log (same
// as ln), log10, exp, floor, ceil, round take one argument; min, max and pow
// take two.
//
// Evaluation follows IEEE arithmetic with one exception: division by zero
// gives NaN.  Comparisons and logical operators give 1 for true and 0 for
// false; both operands of && and || are always evaluated.  A comparison
// involving NaN is false, except for != which is true.
package expr
