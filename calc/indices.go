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
	"fmt"
	"math"
	"strconv"

	"seehuhn.de/go/raster/internal/parallel"
)

// NDVI computes the normalized difference vegetation index
// (nir - red) / (nir + red).  Where nir + red is zero the result is NaN.
func (c *Calculator) NDVI(nir, red int) ([]float64, error) {
	return c.normalizedDifference(nir, red)
}

// NDWI computes the normalized difference water index
// (green - nir) / (green + nir).  Where green + nir is zero the result is
// NaN.
func (c *Calculator) NDWI(green, nir int) ([]float64, error) {
	return c.normalizedDifference(green, nir)
}

// EVI computes the enhanced vegetation index
// 2.5 * (nir - red) / (nir + 6*red - 7.5*blue + 1).  Where the
// denominator is zero the result is NaN.
func (c *Calculator) EVI(nir, red, blue int) ([]float64, error) {
	cols, err := c.readBands(nir, red, blue)
	if err != nil {
		return nil, err
	}
	n, r, b := cols[0], cols[1], cols[2]
	out := make([]float64, len(n))
	parallel.For(c.workers, len(out), func(start, end int) {
		for i := start; i < end; i++ {
			den := n[i] + 6*r[i] - 7.5*b[i] + 1
			if den == 0 {
				out[i] = math.NaN()
			} else {
				out[i] = 2.5 * (n[i] - r[i]) / den
			}
		}
	})
	return out, nil
}

func (c *Calculator) normalizedDifference(a, b int) ([]float64, error) {
	cols, err := c.readBands(a, b)
	if err != nil {
		return nil, err
	}
	x, y := cols[0], cols[1]
	out := make([]float64, len(x))
	parallel.For(c.workers, len(out), func(start, end int) {
		for i := start; i < end; i++ {
			sum := x[i] + y[i]
			if sum == 0 {
				out[i] = math.NaN()
			} else {
				out[i] = (x[i] - y[i]) / sum
			}
		}
	})
	return out, nil
}

// SAVI computes the soil adjusted vegetation index
// (nir - red) / (nir + red + l) * (1 + l).  The soil brightness correction
// l is typically 0.5.
func (c *Calculator) SAVI(nir, red int, l float64) ([]float64, error) {
	ls := strconv.FormatFloat(l, 'g', -1, 64)
	src := fmt.Sprintf("((b%d - b%d) / (b%d + b%d + %s)) * (1 + %s)",
		nir, red, nir, red, ls, ls)
	return c.Calculate(src)
}

// MNDWI computes the modified normalized difference water index
// (green - swir) / (green + swir).
func (c *Calculator) MNDWI(green, swir int) ([]float64, error) {
	return c.Calculate(ndExpr(green, swir))
}

// NDBI computes the normalized difference built-up index
// (swir - nir) / (swir + nir).
func (c *Calculator) NDBI(swir, nir int) ([]float64, error) {
	return c.Calculate(ndExpr(swir, nir))
}

// NDSI computes the normalized difference snow index
// (green - swir) / (green + swir).
func (c *Calculator) NDSI(green, swir int) ([]float64, error) {
	return c.Calculate(ndExpr(green, swir))
}

func ndExpr(a, b int) string {
	return fmt.Sprintf("(b%d - b%d) / (b%d + b%d)", a, b, a, b)
}

// LAI estimates the leaf area index from the NDVI using the empirical
// relation -ln((0.69 - ndvi) / 0.59) / 0.91.  The result is 0 for
// ndvi <= 0.1 and 6 for ndvi >= 0.69.  NaN values stay NaN.
func (c *Calculator) LAI(nir, red int) ([]float64, error) {
	ndvi, err := c.NDVI(nir, red)
	if err != nil {
		return nil, err
	}
	for i, v := range ndvi {
		ndvi[i] = laiFromNDVI(v)
	}
	return ndvi, nil
}

func laiFromNDVI(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return v
	case v >= 0.69:
		return 6
	case v <= 0.1:
		return 0
	default:
		return -math.Log((0.69-v)/0.59) / 0.91
	}
}
