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

package calc

import (
	"context"
	"fmt"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/expr"
	"seehuhn.de/go/raster/internal/parallel"
)

// BlockCalculator evaluates an expression one rectangular block at a time.
// Blocks along the right and bottom edges are truncated to the image.
type BlockCalculator struct {
	calc       *Calculator
	e          *expr.Expression
	blockW     int
	blockH     int
	numX, numY int
}

// NewBlockCalculator compiles src and prepares block-wise evaluation with
// the given nominal block size.
func NewBlockCalculator(ds raster.Dataset, src string, blockW, blockH int, opts ...Option) (*BlockCalculator, error) {
	if blockW <= 0 || blockH <= 0 {
		return nil, fmt.Errorf("invalid block size %dx%d", blockW, blockH)
	}
	e, err := expr.Compile(src)
	if err != nil {
		return nil, err
	}
	for _, b := range e.Bands() {
		if err := raster.CheckBand(ds, b); err != nil {
			return nil, err
		}
	}
	return &BlockCalculator{
		calc:   New(ds, opts...),
		e:      e,
		blockW: blockW,
		blockH: blockH,
		numX:   (ds.Width() + blockW - 1) / blockW,
		numY:   (ds.Height() + blockH - 1) / blockH,
	}, nil
}

// BlockCount returns the number of blocks in x and y direction.
func (bc *BlockCalculator) BlockCount() (nx, ny int) {
	return bc.numX, bc.numY
}

// BlockRect returns the pixel rectangle covered by block (bx, by).
func (bc *BlockCalculator) BlockRect(bx, by int) (rect.IntRect, error) {
	if bx < 0 || by < 0 || bx >= bc.numX || by >= bc.numY {
		return rect.IntRect{}, fmt.Errorf("block (%d, %d) outside %dx%d grid",
			bx, by, bc.numX, bc.numY)
	}
	x0 := bx * bc.blockW
	y0 := by * bc.blockH
	return rect.IntRect{
		XMin: x0,
		YMin: y0,
		XMax: min(x0+bc.blockW, bc.calc.ds.Width()),
		YMax: min(y0+bc.blockH, bc.calc.ds.Height()),
	}, nil
}

// Block evaluates the expression over block (bx, by).  The result is
// row-major with the actual block width w and height h, which are smaller
// than the nominal block size at the image edges.
func (bc *BlockCalculator) Block(bx, by int) (data []float64, w, h int, err error) {
	r, err := bc.BlockRect(bx, by)
	if err != nil {
		return nil, 0, 0, err
	}
	data, err = bc.calc.evaluate(bc.e, nil, 0, r, bc.calc.workers)
	if err != nil {
		return nil, 0, 0, err
	}
	return data, r.XMax - r.XMin, r.YMax - r.YMin, nil
}

// All evaluates every block and assembles the results into a full image.
// Blocks are evaluated concurrently, but the band reads of different
// blocks never overlap, so the dataset need not support concurrent
// reads.  If ctx is cancelled, no further
// blocks are started and ctx.Err() is returned.
func (bc *BlockCalculator) All(ctx context.Context) ([]float64, error) {
	width := bc.calc.ds.Width()
	out := make([]float64, width*bc.calc.ds.Height())

	total := bc.numX * bc.numY
	err := parallel.Each(ctx, bc.calc.workers, total, func(ctx context.Context, k int) error {
		bx, by := k%bc.numX, k/bc.numX
		r, err := bc.BlockRect(bx, by)
		if err != nil {
			return err
		}
		data, err := bc.calc.evaluate(bc.e, nil, 0, r, 1)
		if err != nil {
			return fmt.Errorf("block (%d, %d): %w", bx, by, err)
		}
		w := r.XMax - r.XMin
		for y := r.YMin; y < r.YMax; y++ {
			row := data[(y-r.YMin)*w : (y-r.YMin+1)*w]
			copy(out[y*width+r.XMin:], row)
		}
		bc.calc.log.Debug("block done", "bx", bx, "by", by)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
