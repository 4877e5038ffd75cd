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

package tone

import (
	"math"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/internal/float"
	"seehuhn.de/go/raster/internal/parallel"
)

// Default parameters for [CLAHE].
const (
	DefaultTileSize  = 64
	DefaultClipLimit = 2.0
)

// CLAHE applies contrast limited adaptive histogram equalization to every
// band of ds.
//
// The image is divided into tiles of tileSize×tileSize pixels (tiles at
// the right and bottom edge may be smaller).  Each tile gets its own
// equalization table, computed from a histogram in which every bin is
// limited to clipLimit times the average bin count.  Output values are
// interpolated bilinearly between the tables of the four tiles whose
// centres are closest to the pixel.
//
// Non-positive values of tileSize and clipLimit select the defaults.
func CLAHE(ds raster.Dataset, tileSize int, clipLimit float64) (*raster.Memory, error) {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	if !(clipLimit > 0) {
		clipLimit = DefaultClipLimit
	}

	bands, err := raster.ReadAll8(ds)
	if err != nil {
		return nil, err
	}

	width, height := ds.Width(), ds.Height()
	for i, src := range bands {
		bands[i] = claheBand(src, width, height, tileSize, clipLimit)
	}
	return raster.FromBytes(ds, bands), nil
}

// LocalContrast enhances local contrast.  This is the same as [CLAHE].
func LocalContrast(ds raster.Dataset, tileSize int, clipLimit float64) (*raster.Memory, error) {
	return CLAHE(ds, tileSize, clipLimit)
}

func claheBand(src []uint8, width, height, tileSize int, clipLimit float64) []uint8 {
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	luts := make([]LUT, tilesX*tilesY)
	parallel.For(0, len(luts), func(start, end int) {
		var hist [256]int
		for k := start; k < end; k++ {
			tx, ty := k%tilesX, k/tilesX
			x0, y0 := tx*tileSize, ty*tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			clear(hist[:])
			for y := y0; y < y1; y++ {
				for _, v := range src[y*width+x0 : y*width+x1] {
					hist[v]++
				}
			}
			luts[k] = tileLUT(&hist, (x1-x0)*(y1-y0), clipLimit)
		}
	})

	dst := make([]uint8, len(src))
	ts := float64(tileSize)
	parallel.For(0, height, func(start, end int) {
		for y := start; y < end; y++ {
			fy := float64(y)/ts - 0.5
			ty0 := int(math.Floor(fy))
			wy := fy - math.Floor(fy)
			if fy < 0 {
				wy = 0
			}
			ty1 := min(max(ty0+1, 0), tilesY-1)
			ty0 = min(max(ty0, 0), tilesY-1)

			for x := range width {
				fx := float64(x)/ts - 0.5
				tx0 := int(math.Floor(fx))
				wx := fx - math.Floor(fx)
				if fx < 0 {
					wx = 0
				}
				tx1 := min(max(tx0+1, 0), tilesX-1)
				tx0 = min(max(tx0, 0), tilesX-1)

				v := src[y*width+x]
				v00 := float64(luts[ty0*tilesX+tx0][v])
				v01 := float64(luts[ty0*tilesX+tx1][v])
				v10 := float64(luts[ty1*tilesX+tx0][v])
				v11 := float64(luts[ty1*tilesX+tx1][v])

				top := v00 + (v01-v00)*wx
				bottom := v10 + (v11-v10)*wx
				dst[y*width+x] = float.Byte(top + (bottom-top)*wy)
			}
		}
	})
	return dst
}

// tileLUT computes the clipped equalization table for one tile.  The
// histogram is modified.
//
// A tile in which all pixels have the same value gets the identity table,
// so that flat image regions are left unchanged.
func tileLUT(hist *[256]int, tilePixels int, clipLimit float64) LUT {
	occupied := 0
	for _, n := range hist {
		if n > 0 {
			occupied++
		}
	}
	if occupied <= 1 {
		return Identity()
	}

	limit := max(int(clipLimit*float64(tilePixels)/256), 1)
	excess := 0
	for i, n := range hist {
		if n > limit {
			excess += n - limit
			hist[i] = limit
		}
	}
	inc, rem := excess/256, excess%256
	for i := range hist {
		hist[i] += inc
	}
	for k := range rem {
		hist[k*256/rem]++
	}

	var cdf [256]int
	sum := 0
	for i, n := range hist {
		sum += n
		cdf[i] = sum
	}
	cdfMin := 0
	for _, c := range cdf {
		if c > 0 {
			cdfMin = c
			break
		}
	}

	var lut LUT
	scale := 255 / float64(tilePixels-cdfMin+1)
	for i, c := range cdf {
		lut[i] = float.Byte(float64(c-cdfMin) * scale)
	}
	return lut
}
