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

// DefaultWallisWindow is the window size used by [Wallis] when none is
// given.
const DefaultWallisWindow = 31

// WallisParams describes a Wallis filter.
type WallisParams struct {
	// TargetMean and TargetStd are the desired local mean and local
	// standard deviation.
	TargetMean float64
	TargetStd  float64

	// C is the contrast expansion constant and B the brightness forcing
	// constant.  Both are clamped to [0, 1].
	C float64
	B float64

	// Window is the side length of the square window used for the local
	// statistics.  Even sizes are increased by one, non-positive sizes
	// select DefaultWallisWindow.
	Window int
}

// Wallis applies the Wallis filter to every band of ds.  Each pixel f is
// replaced by
//
//	(f - m) · C·TargetStd/max(s, 1) + B·TargetMean + (1-B)·m
//
// where m and s are the mean and standard deviation of the window centred
// on the pixel.  Windows are clipped at the image border.
func Wallis(ds raster.Dataset, p WallisParams) (*raster.Memory, error) {
	window := p.Window
	if window <= 0 {
		window = DefaultWallisWindow
	}
	if window%2 == 0 {
		window++
	}
	c := float.Clamp(p.C, 0, 1)
	b := float.Clamp(p.B, 0, 1)

	bands, err := raster.ReadAll8(ds)
	if err != nil {
		return nil, err
	}

	width, height := ds.Width(), ds.Height()
	half := window / 2
	for _, data := range bands {
		sum, sum2 := integralImages(data, width, height)
		stride := width + 1
		parallel.For(0, height, func(start, end int) {
			for y := start; y < end; y++ {
				y0 := max(y-half, 0)
				y1 := min(y+half, height-1) + 1
				for x := range width {
					x0 := max(x-half, 0)
					x1 := min(x+half, width-1) + 1
					count := float64((x1 - x0) * (y1 - y0))

					s := sum[y1*stride+x1] - sum[y0*stride+x1] - sum[y1*stride+x0] + sum[y0*stride+x0]
					s2 := sum2[y1*stride+x1] - sum2[y0*stride+x1] - sum2[y1*stride+x0] + sum2[y0*stride+x0]
					mean := s / count
					sd := 1.0
					if v := s2/count - mean*mean; v > 0 {
						sd = math.Sqrt(v)
					}
					sd = max(sd, 1)

					f := float64(data[y*width+x])
					g := (f-mean)*(c*p.TargetStd/sd) + b*p.TargetMean + (1-b)*mean
					data[y*width+x] = float.Byte(g)
				}
			}
		})
	}
	return raster.FromBytes(ds, bands), nil
}

// integralImages returns the summed-area tables of the samples and of
// their squares.  Both tables have (width+1)×(height+1) entries, with a
// zero first row and column.
func integralImages(data []uint8, width, height int) (sum, sum2 []float64) {
	stride := width + 1
	sum = make([]float64, stride*(height+1))
	sum2 = make([]float64, stride*(height+1))
	for y := range height {
		rowSum, rowSum2 := 0.0, 0.0
		for x := range width {
			v := float64(data[y*width+x])
			rowSum += v
			rowSum2 += v * v
			i := (y+1)*stride + x + 1
			sum[i] = sum[i-stride] + rowSum
			sum2[i] = sum2[i-stride] + rowSum2
		}
	}
	return sum, sum2
}
