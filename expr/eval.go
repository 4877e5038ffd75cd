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
	"fmt"
)

// Evaluator evaluates an expression over arrays of band samples.
//
// An Evaluator is read-only after construction.  Several goroutines can
// evaluate different pixels at the same time, as long as each one uses its
// own stack.
type Evaluator struct {
	code  []instruction
	cols  [][]float64
	n     int
	depth int
}

// Bind attaches sample arrays to the bands used by e.  The map must
// contain an entry for every band in e.Bands(), and all these arrays must
// have the same length.  Extra entries are ignored.
func (e *Expression) Bind(data map[int][]float64) (*Evaluator, error) {
	cols := make([][]float64, len(e.bands))
	n := -1
	for i, band := range e.bands {
		col, ok := data[band]
		if !ok {
			return nil, fmt.Errorf("band %d: %w", band, ErrUnbound)
		}
		if n >= 0 && len(col) != n {
			return nil, fmt.Errorf("band %d has %d samples, expected %d", band, len(col), n)
		}
		n = len(col)
		cols[i] = col
	}
	return &Evaluator{
		code:  e.code,
		cols:  cols,
		n:     n,
		depth: e.depth,
	}, nil
}

// Len returns the number of pixels in the bound arrays.  For an expression
// which uses no bands this is -1, and any pixel index can be evaluated.
func (ev *Evaluator) Len() int {
	return ev.n
}

// NewStack allocates a stack which is large enough for the expression.
func (ev *Evaluator) NewStack() []float64 {
	return make([]float64, 0, ev.depth)
}

// At evaluates the expression for pixel i.  The stack is scratch space,
// typically obtained from NewStack and reused for many calls.
func (ev *Evaluator) At(i int, stack []float64) float64 {
	return execute(ev.code, ev.cols, i, stack)
}

// Fill evaluates pixels start, ..., end-1 and stores the results in
// out[start:end].
func (ev *Evaluator) Fill(out []float64, start, end int) {
	stack := ev.NewStack()
	for i := start; i < end; i++ {
		out[i] = execute(ev.code, ev.cols, i, stack)
	}
}
