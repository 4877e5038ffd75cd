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

package balance

import (
	"math"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/internal/float"
	"seehuhn.de/go/raster/internal/parallel"
)

// DefaultDodgingBlock is the block size used by [Dodging] when none is
// given.
const DefaultDodgingBlock = 128

// Dodging evens out the brightness of an image.  The local mean of every
// pixel is interpolated bilinearly from the means of blockSize×blockSize
// blocks, and strength·(globalMean - localMean) is added to the pixel.
// Strength is clamped to [0, 1]; a non-positive block size selects
// DefaultDodgingBlock.
func Dodging(ds raster.Dataset, blockSize int, strength float64) (*raster.Memory, error) {
	if blockSize <= 0 {
		blockSize = DefaultDodgingBlock
	}
	strength = float.Clamp(strength, 0, 1)

	bands, err := raster.ReadAll8(ds)
	if err != nil {
		return nil, err
	}
	width, height := ds.Width(), ds.Height()
	for i, data := range bands {
		bands[i] = dodgeBand(data, width, height, blockSize, strength)
	}
	return raster.FromBytes(ds, bands), nil
}

func dodgeBand(src []uint8, width, height, blockSize int, strength float64) []uint8 {
	if len(src) == 0 {
		return src
	}
	global, _ := moments(src)

	blocksX := (width + blockSize - 1) / blockSize
	blocksY := (height + blockSize - 1) / blockSize
	means := make([]float64, blocksX*blocksY)
	for by := range blocksY {
		y0, y1 := by*blockSize, min((by+1)*blockSize, height)
		for bx := range blocksX {
			x0, x1 := bx*blockSize, min((bx+1)*blockSize, width)
			sum := 0.0
			for y := y0; y < y1; y++ {
				for _, v := range src[y*width+x0 : y*width+x1] {
					sum += float64(v)
				}
			}
			means[by*blocksX+bx] = sum / float64((x1-x0)*(y1-y0))
		}
	}

	dst := make([]uint8, len(src))
	bs := float64(blockSize)
	parallel.For(0, height, func(start, end int) {
		for y := start; y < end; y++ {
			by0, by1, wy := cell(float64(y)/bs-0.5, blocksY)
			for x := range width {
				bx0, bx1, wx := cell(float64(x)/bs-0.5, blocksX)
				m00 := means[by0*blocksX+bx0]
				m01 := means[by0*blocksX+bx1]
				m10 := means[by1*blocksX+bx0]
				m11 := means[by1*blocksX+bx1]
				top := m00 + (m01-m00)*wx
				bottom := m10 + (m11-m10)*wx
				local := top + (bottom-top)*wy

				v := float64(src[y*width+x]) + (global-local)*strength
				dst[y*width+x] = float.Byte(v)
			}
		}
	})
	return dst
}

// cell locates the grid position f between the centres of two cells.  It
// returns the two cell indices, clamped to [0, n-1], and the interpolation
// weight of the second one.
func cell(f float64, n int) (i0, i1 int, w float64) {
	fl := math.Floor(f)
	i0 = int(fl)
	if f >= 0 {
		w = f - fl
	}
	i1 = min(max(i0+1, 0), n-1)
	i0 = min(max(i0, 0), n-1)
	return i0, i1, w
}
