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
	"seehuhn.de/go/raster/internal/float"
)

// minRegressionSamples is the number of usable overlap pixels above which
// LinearRegression fits a line.
const minRegressionSamples = 10

// LinearRegression adjusts every band of src by a linear map a·x+b fitted
// by least squares to the overlap area, where src and ref are assumed to
// show the same scene.  The zero rectangle selects the full image.
//
// Pixels which are 0 in either image are treated as missing.  If there are
// not enough samples, the band is left unchanged.  The slope a is clamped
// to [0.5, 2] and the intercept b to [-50, 50].
func LinearRegression(src, ref raster.Dataset, overlap rect.IntRect) (*raster.Memory, error) {
	n := src.BandCount()
	if n != ref.BandCount() {
		return nil, ErrBandCountMismatch
	}
	if n < 3 {
		return nil, raster.ErrNotEnoughBands
	}
	overlap, err := checkRegion(src, overlap)
	if err != nil {
		return nil, err
	}
	overlap, err = checkRegion(ref, overlap)
	if err != nil {
		return nil, err
	}

	bands, err := raster.ReadAll8(src)
	if err != nil {
		return nil, err
	}
	for i, data := range bands {
		x, err := raster.ReadBand8(src, i+1, overlap)
		if err != nil {
			return nil, err
		}
		y, err := raster.ReadBand8(ref, i+1, overlap)
		if err != nil {
			return nil, err
		}
		a, b := fitLine(x, y)
		for k, v := range data {
			data[k] = float.Byte(float64(v)*a + b)
		}
	}
	return raster.FromBytes(src, bands), nil
}

// fitLine returns the clamped least squares fit y ≈ a·x + b over all
// positions where neither x nor y is zero.
func fitLine(x, y []uint8) (a, b float64) {
	var sumX, sumY, sumXY, sumX2 float64
	count := 0
	for i := range x {
		if x[i] == 0 || y[i] == 0 {
			continue
		}
		xi, yi := float64(x[i]), float64(y[i])
		sumX += xi
		sumY += yi
		sumXY += xi * yi
		sumX2 += xi * xi
		count++
	}

	a, b = 1, 0
	if count > minRegressionSamples {
		n := float64(count)
		denom := n*sumX2 - sumX*sumX
		if math.Abs(denom) > 1e-10 {
			a = (n*sumXY - sumX*sumY) / denom
			b = (sumY - a*sumX) / n
		}
	}
	return float.Clamp(a, 0.5, 2), float.Clamp(b, -50, 50)
}
