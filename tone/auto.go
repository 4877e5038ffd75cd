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
	"fmt"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/internal/float"
)

func histogram(data []uint8) *[256]int {
	var h [256]int
	for _, v := range data {
		h[v]++
	}
	return &h
}

// AutoLevels stretches every band so that its clipped range covers
// [0, 255].  In each band, clipPercent percent of the pixels at either end
// of the histogram are mapped to 0 and 255 respectively.
func AutoLevels(ds raster.Dataset, clipPercent float64) (*raster.Memory, error) {
	if !(clipPercent >= 0 && clipPercent < 50) {
		return nil, fmt.Errorf("clip percentage %g: %w", clipPercent, ErrInvalidParameter)
	}
	bands, err := raster.ReadAll8(ds)
	if err != nil {
		return nil, err
	}

	total := ds.Width() * ds.Height()
	clip := int(float64(total) * clipPercent / 100)
	for _, data := range bands {
		hist := histogram(data)

		lo := 0
		count := 0
		for i := 0; i < 256; i++ {
			count += hist[i]
			if count > clip {
				lo = i
				break
			}
		}
		hi := 255
		count = 0
		for i := 255; i >= 0; i-- {
			count += hist[i]
			if count > clip {
				hi = i
				break
			}
		}
		if hi <= lo {
			hi = lo + 1
		}

		var lut LUT
		scale := 255 / float64(hi-lo)
		for i := range lut {
			switch {
			case i <= lo:
				lut[i] = 0
			case i >= hi:
				lut[i] = 255
			default:
				lut[i] = float.Byte(float64(i-lo) * scale)
			}
		}
		lut.Apply(data)
	}
	return raster.FromBytes(ds, bands), nil
}

// AutoContrast is AutoLevels with 0.5% clipping.
func AutoContrast(ds raster.Dataset) (*raster.Memory, error) {
	return AutoLevels(ds, 0.5)
}

// AutoWhiteBalance removes a colour cast using the gray world assumption:
// the red, green and blue bands are scaled so that their means agree.
// Datasets with fewer than three bands are copied unchanged.
func AutoWhiteBalance(ds raster.Dataset) (*raster.Memory, error) {
	bands, err := raster.ReadAll8(ds)
	if err != nil {
		return nil, err
	}
	if len(bands) < 3 {
		return raster.FromBytes(ds, bands), nil
	}

	var avg [3]float64
	for c := range 3 {
		sum := 0.0
		for _, v := range bands[c] {
			sum += float64(v)
		}
		if len(bands[c]) > 0 {
			avg[c] = sum / float64(len(bands[c]))
		}
	}
	gray := (avg[0] + avg[1] + avg[2]) / 3

	for c := range 3 {
		scale := 1.0
		if avg[c] > 0 {
			scale = gray / avg[c]
		}
		data := bands[c]
		for i, v := range data {
			data[i] = float.Byte(float64(v) * scale)
		}
	}
	return raster.FromBytes(ds, bands), nil
}

// HistogramEqualization spreads the values of one band, or of every band
// if band is 0, so that their histogram becomes approximately flat.
func HistogramEqualization(ds raster.Dataset, band int) (*raster.Memory, error) {
	if err := checkBandSelector(ds, band); err != nil {
		return nil, err
	}
	bands, err := raster.ReadAll8(ds)
	if err != nil {
		return nil, err
	}

	total := ds.Width() * ds.Height()
	for i, data := range bands {
		if band != 0 && band != i+1 {
			continue
		}
		lut := equalizeLUT(histogram(data), total)
		lut.Apply(data)
	}
	return raster.FromBytes(ds, bands), nil
}

// equalizeLUT computes the histogram equalization lookup table.  Values
// up to and including the smallest occupied bin map to 0.
func equalizeLUT(hist *[256]int, total int) LUT {
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
	if total <= cdfMin {
		return lut
	}
	scale := 255 / float64(total-cdfMin)
	for i, c := range cdf {
		if c > cdfMin {
			lut[i] = float.Byte(float64(c-cdfMin) * scale)
		}
	}
	return lut
}
