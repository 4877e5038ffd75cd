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

package expr

import (
	"math"
	"strconv"
)

// opCode identifies a bytecode instruction.
type opCode uint8

const (
	opConst opCode = iota // push fval
	opBand                // push the sample of bands[ival]

	// arithmetic operators
	opAdd
	opSub
	opMul
	opDiv
	opPow
	opNeg

	// functions
	opSqrt
	opAbs
	opSin
	opCos
	opTan
	opLog
	opLog10
	opExp
	opFloor
	opCeil
	opRound
	opMin
	opMax
	opPowFunc

	// comparisons
	opGT
	opGE
	opLT
	opLE
	opEQ
	opNE

	// boolean connectives
	opAnd
	opOr

	opCount
)

var opNames = [opCount]string{
	opConst: "const", opBand: "band",
	opAdd: "add", opSub: "sub", opMul: "mul", opDiv: "div", opPow: "pow", opNeg: "neg",
	opSqrt: "sqrt", opAbs: "abs", opSin: "sin", opCos: "cos", opTan: "tan",
	opLog: "log", opLog10: "log10", opExp: "exp", opFloor: "floor",
	opCeil: "ceil", opRound: "round", opMin: "min", opMax: "max",
	opPowFunc: "powf",
	opGT: "gt", opGE: "ge", opLT: "lt", opLE: "le", opEQ: "eq", opNE: "ne",
	opAnd: "and", opOr: "or",
}

func (op opCode) String() string {
	if op < opCount {
		return opNames[op]
	}
	return "op" + strconv.Itoa(int(op))
}

// arity returns the number of values an instruction pops from the stack.
// Every instruction pushes exactly one value.
func (op opCode) arity() int {
	switch {
	case op == opConst || op == opBand:
		return 0
	case op == opNeg || op >= opSqrt && op <= opRound:
		return 1
	default:
		return 2
	}
}

// instruction is a single bytecode instruction.
type instruction struct {
	op   opCode
	ival int
	fval float64
}

// StackSize is the evaluation stack capacity.  The compiler rejects
// expressions which would need a deeper stack.
const StackSize = 256

// stackDepth returns the maximum stack depth reached while executing code,
// or -1 if the code would underflow or does not leave exactly one value.
func stackDepth(code []instruction) int {
	depth, maxDepth := 0, 0
	for _, inst := range code {
		n := inst.op.arity()
		if depth < n {
			return -1
		}
		depth = depth - n + 1
		maxDepth = max(maxDepth, depth)
	}
	if depth != 1 {
		return -1
	}
	return maxDepth
}

// execute runs code for pixel i.  Band loads read cols[inst.ival][i].
// The stack slice is used as scratch space and may be nil.
func execute(code []instruction, cols [][]float64, i int, stack []float64) float64 {
	stack = stack[:0]
	for _, inst := range code {
		switch inst.op {
		case opConst:
			stack = append(stack, inst.fval)
		case opBand:
			stack = append(stack, cols[inst.ival][i])

		case opNeg:
			stack[len(stack)-1] = -stack[len(stack)-1]
		case opSqrt:
			stack[len(stack)-1] = math.Sqrt(stack[len(stack)-1])
		case opAbs:
			stack[len(stack)-1] = math.Abs(stack[len(stack)-1])
		case opSin:
			stack[len(stack)-1] = math.Sin(stack[len(stack)-1])
		case opCos:
			stack[len(stack)-1] = math.Cos(stack[len(stack)-1])
		case opTan:
			stack[len(stack)-1] = math.Tan(stack[len(stack)-1])
		case opLog:
			stack[len(stack)-1] = math.Log(stack[len(stack)-1])
		case opLog10:
			stack[len(stack)-1] = math.Log10(stack[len(stack)-1])
		case opExp:
			stack[len(stack)-1] = math.Exp(stack[len(stack)-1])
		case opFloor:
			stack[len(stack)-1] = math.Floor(stack[len(stack)-1])
		case opCeil:
			stack[len(stack)-1] = math.Ceil(stack[len(stack)-1])
		case opRound:
			stack[len(stack)-1] = math.Round(stack[len(stack)-1])

		default:
			if len(stack) < 2 {
				return math.NaN()
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-1]
			stack[len(stack)-1] = binary(inst.op, a, b)
		}
	}
	if len(stack) == 0 {
		return math.NaN()
	}
	return stack[len(stack)-1]
}

// binary applies a two-operand instruction.  a is the left operand.
func binary(op opCode, a, b float64) float64 {
	switch op {
	case opAdd:
		return a + b
	case opSub:
		return a - b
	case opMul:
		return a * b
	case opDiv:
		if b == 0 {
			return math.NaN()
		}
		return a / b
	case opPow, opPowFunc:
		return math.Pow(a, b)
	case opMin:
		return fmin(a, b)
	case opMax:
		return fmax(a, b)
	case opGT:
		return truth(a > b)
	case opGE:
		return truth(a >= b)
	case opLT:
		return truth(a < b)
	case opLE:
		return truth(a <= b)
	case opEQ:
		return truth(a == b)
	case opNE:
		return truth(a != b)
	case opAnd:
		return truth(a != 0 && b != 0)
	case opOr:
		return truth(a != 0 || b != 0)
	default:
		return math.NaN()
	}
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// fmin returns the smaller argument.  If exactly one argument is NaN, the
// other one is returned.
func fmin(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	case b < a:
		return b
	default:
		return a
	}
}

// fmax returns the larger argument.  If exactly one argument is NaN, the
// other one is returned.
func fmax(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	case b > a:
		return b
	default:
		return a
	}
}
