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
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
)

// function name → opcode and number of arguments
var funcs = map[string]struct {
	op   opCode
	args int
}{
	"sqrt": {opSqrt, 1}, "abs": {opAbs, 1}, "sin": {opSin, 1},
	"cos": {opCos, 1}, "tan": {opTan, 1}, "log": {opLog, 1},
	"ln": {opLog, 1}, "log10": {opLog10, 1}, "exp": {opExp, 1},
	"floor": {opFloor, 1}, "ceil": {opCeil, 1}, "round": {opRound, 1},
	"min": {opMin, 2}, "max": {opMax, 2}, "pow": {opPowFunc, 2},
}

// maxNesting limits the recursion depth of the parser.
const maxNesting = 1000

// Expression is a compiled band algebra expression.
//
// An Expression is immutable and may be used concurrently from several
// goroutines.
type Expression struct {
	src   string
	code  []instruction
	bands []int // sorted; opBand instructions index into this slice
	depth int   // maximum stack depth
}

// Compile compiles an expression.  If the expression is not valid, the
// returned error is a *CompileError.
func Compile(src string) (*Expression, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{
		src:    src,
		tokens: tokens,
		used:   make(map[int]struct{}),
	}
	if err := p.parseExpr(); err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokEnd {
		return nil, errorf(src, tok.pos, "unexpected %s", tok.typ)
	}

	// Band loads are compiled with the band number in ival.  Replace this
	// with the position in the sorted band list.
	bands := maps.Keys(p.used)
	slices.Sort(bands)
	for i := range p.code {
		if p.code[i].op == opBand {
			p.code[i].ival, _ = slices.BinarySearch(bands, p.code[i].ival)
		}
	}

	depth := stackDepth(p.code)
	if depth < 0 {
		return nil, errorf(src, 0, "internal error: unbalanced code")
	}
	if depth > StackSize {
		return nil, errorf(src, 0, "expression needs %d stack slots, limit is %d", depth, StackSize)
	}

	return &Expression{
		src:   src,
		code:  p.code,
		bands: bands,
		depth: depth,
	}, nil
}

// MustCompile is like [Compile] but panics if the expression is invalid.
func MustCompile(src string) *Expression {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Validate checks whether src is a valid expression.
func Validate(src string) error {
	_, err := Compile(src)
	return err
}

// String returns the source text of the expression.
func (e *Expression) String() string {
	return e.src
}

// Bands returns the distinct band indices used by the expression, in
// increasing order.
func (e *Expression) Bands() []int {
	return slices.Clone(e.bands)
}

// StackDepth returns the number of stack slots needed to evaluate the
// expression.
func (e *Expression) StackDepth() int {
	return e.depth
}

// Disassemble returns a listing of the compiled code, one instruction per
// line.
func (e *Expression) Disassemble() string {
	var b strings.Builder
	for _, inst := range e.code {
		b.WriteString(inst.op.String())
		switch inst.op {
		case opConst:
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(inst.fval, 'g', -1, 64))
		case opBand:
			b.WriteByte(' ')
			b.WriteString(strconv.Itoa(e.bands[inst.ival]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Eval evaluates the expression for a single pixel.  The map gives the
// sample value for every band index.  Bands missing from the map read as
// NaN.
func (e *Expression) Eval(values map[int]float64) float64 {
	cols := make([][]float64, len(e.bands))
	for i, band := range e.bands {
		v, ok := values[band]
		if !ok {
			v = math.NaN()
		}
		cols[i] = []float64{v}
	}
	return execute(e.code, cols, 0, make([]float64, 0, e.depth))
}

type parser struct {
	src    string
	tokens []token
	pos    int
	code   []instruction
	used   map[int]struct{}
	nest   int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokEnd {
		p.pos++
	}
	return tok
}

func (p *parser) emit(op opCode) {
	p.code = append(p.code, instruction{op: op})
}

func (p *parser) isOperator(s string) bool {
	tok := p.peek()
	return tok.typ == tokOperator && tok.sval == s
}

func (p *parser) parseExpr() error {
	p.nest++
	defer func() { p.nest-- }()
	if p.nest > maxNesting {
		return errorf(p.src, p.peek().pos, "expression nested too deeply")
	}
	return p.parseLogicOr()
}

func (p *parser) parseLogicOr() error {
	if err := p.parseLogicAnd(); err != nil {
		return err
	}
	for p.peek().typ == tokLogic && p.peek().op == opOr {
		p.next()
		if err := p.parseLogicAnd(); err != nil {
			return err
		}
		p.emit(opOr)
	}
	return nil
}

func (p *parser) parseLogicAnd() error {
	if err := p.parseComparison(); err != nil {
		return err
	}
	for p.peek().typ == tokLogic && p.peek().op == opAnd {
		p.next()
		if err := p.parseComparison(); err != nil {
			return err
		}
		p.emit(opAnd)
	}
	return nil
}

func (p *parser) parseComparison() error {
	if err := p.parseAddSub(); err != nil {
		return err
	}
	for p.peek().typ == tokCompare {
		op := p.next().op
		if err := p.parseAddSub(); err != nil {
			return err
		}
		p.emit(op)
	}
	return nil
}

func (p *parser) parseAddSub() error {
	if err := p.parseMulDiv(); err != nil {
		return err
	}
	for p.isOperator("+") || p.isOperator("-") {
		op := opAdd
		if p.next().sval == "-" {
			op = opSub
		}
		if err := p.parseMulDiv(); err != nil {
			return err
		}
		p.emit(op)
	}
	return nil
}

func (p *parser) parseMulDiv() error {
	if err := p.parsePower(); err != nil {
		return err
	}
	for p.isOperator("*") || p.isOperator("/") {
		op := opMul
		if p.next().sval == "/" {
			op = opDiv
		}
		if err := p.parsePower(); err != nil {
			return err
		}
		p.emit(op)
	}
	return nil
}

// parsePower is right-associative: 2^3^2 = 2^(3^2).
func (p *parser) parsePower() error {
	if err := p.parseUnary(); err != nil {
		return err
	}
	if p.isOperator("^") {
		p.next()
		if err := p.nested(p.parsePower); err != nil {
			return err
		}
		p.emit(opPow)
	}
	return nil
}

func (p *parser) parseUnary() error {
	switch {
	case p.isOperator("-"):
		p.next()
		if err := p.nested(p.parseUnary); err != nil {
			return err
		}
		p.emit(opNeg)
		return nil
	case p.isOperator("+"):
		p.next()
		return p.nested(p.parseUnary)
	}
	return p.parsePrimary()
}

// nested calls fn with the nesting depth increased, so that long chains of
// unary operators or powers cannot exhaust the parser's stack.
func (p *parser) nested(fn func() error) error {
	p.nest++
	defer func() { p.nest-- }()
	if p.nest > maxNesting {
		return errorf(p.src, p.peek().pos, "expression nested too deeply")
	}
	return fn()
}

func (p *parser) parsePrimary() error {
	tok := p.next()
	switch tok.typ {
	case tokNumber:
		p.code = append(p.code, instruction{op: opConst, fval: tok.fval})
		return nil

	case tokBand:
		p.used[tok.ival] = struct{}{}
		p.code = append(p.code, instruction{op: opBand, ival: tok.ival})
		return nil

	case tokIdent:
		return p.parseCall(tok)

	case tokLParen:
		if err := p.parseExpr(); err != nil {
			return err
		}
		if rp := p.next(); rp.typ != tokRParen {
			return errorf(p.src, rp.pos, "expected ')', found %s", rp.typ)
		}
		return nil

	default:
		return errorf(p.src, tok.pos, "unexpected %s", tok.typ)
	}
}

func (p *parser) parseCall(name token) error {
	fn, ok := funcs[name.sval]
	if !ok {
		return errorf(p.src, name.pos, "unknown function %q", name.sval)
	}
	if lp := p.next(); lp.typ != tokLParen {
		return errorf(p.src, lp.pos, "expected '(' after %s", name.sval)
	}
	if err := p.parseExpr(); err != nil {
		return err
	}
	args := 1
	if p.peek().typ == tokComma {
		comma := p.next()
		if fn.args < 2 {
			return errorf(p.src, comma.pos, "%s takes one argument", name.sval)
		}
		if err := p.parseExpr(); err != nil {
			return err
		}
		args++
	}
	if args < fn.args {
		return errorf(p.src, p.peek().pos, "%s requires two arguments", name.sval)
	}
	if rp := p.next(); rp.typ != tokRParen {
		return errorf(p.src, rp.pos, "expected ')', found %s", rp.typ)
	}
	p.emit(fn.op)
	return nil
}
