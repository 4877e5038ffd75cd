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

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/tone"
)

// HistogramMatch maps the values of every band of src so that the
// histogram of srcRegion approximates the histogram of refRegion in ref.
// The zero rectangle selects the full image.  Both datasets must have the
// same number of bands.
func HistogramMatch(src, ref raster.Dataset, srcRegion, refRegion rect.IntRect) (*raster.Memory, error) {
	if src.BandCount() != ref.BandCount() {
		return nil, ErrBandCountMismatch
	}

	bands, err := raster.ReadAll8(src)
	if err != nil {
		return nil, err
	}
	for i, data := range bands {
		srcHist, err := Histogram(src, i+1, srcRegion)
		if err != nil {
			return nil, err
		}
		refHist, err := Histogram(ref, i+1, refRegion)
		if err != nil {
			return nil, err
		}
		lut := matchLUT(&srcHist, &refHist)
		lut.Apply(data)
	}
	return raster.FromBytes(src, bands), nil
}

// matchLUT maps every value to the reference value with the closest
// cumulative frequency.  Ties go to the smaller value.
func matchLUT(srcHist, refHist *[256]int) tone.LUT {
	srcCDF := cdf(srcHist)
	refCDF := cdf(refHist)

	var lut tone.LUT
	for i, p := range srcCDF {
		best := 0
		bestDiff := math.Abs(p - refCDF[0])
		for j := 1; j < 256; j++ {
			if d := math.Abs(p - refCDF[j]); d < bestDiff {
				best, bestDiff = j, d
			}
		}
		lut[i] = uint8(best)
	}
	return lut
}
