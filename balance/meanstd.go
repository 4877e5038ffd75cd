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
	"fmt"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/internal/float"
	"seehuhn.de/go/raster/internal/parallel"
)

// MeanStdMatch applies a linear transformation to the red, green and blue
// bands of src, so that the mean and standard deviation of region move
// towards target.  The zero rectangle selects the full image.
//
// Strength, which is clamped to [0, 1], selects how far the statistics are
// moved: 0 leaves the image unchanged, 1 matches target exactly.  Bands
// after the third are copied unchanged.
func MeanStdMatch(src raster.Dataset, target *ColorStatistics, region rect.IntRect, strength float64) (*raster.Memory, error) {
	if src.BandCount() < 3 {
		return nil, raster.ErrNotEnoughBands
	}
	strength = float.Clamp(strength, 0, 1)

	srcStats, err := ColorStats(src, region)
	if err != nil {
		return nil, err
	}
	bands, err := raster.ReadAll8(src)
	if err != nil {
		return nil, err
	}

	for c := range 3 {
		scale := 1.0
		if srcStats.Std[c] > 0 {
			scale = target.Std[c] / srcStats.Std[c]
		}
		scale = 1 + (scale-1)*strength
		offset := (target.Mean[c] - srcStats.Mean[c]*scale) * strength

		data := bands[c]
		parallel.For(0, len(data), func(start, end int) {
			for i := start; i < end; i++ {
				data[i] = float.Byte(float64(data[i])*scale + offset)
			}
		})
	}
	return raster.FromBytes(src, bands), nil
}

// MomentMatch matches the mean and standard deviation of srcRegion in src
// to those of refRegion in ref.
func MomentMatch(src, ref raster.Dataset, srcRegion, refRegion rect.IntRect) (*raster.Memory, error) {
	refStats, err := ColorStats(ref, refRegion)
	if err != nil {
		return nil, err
	}
	return MeanStdMatch(src, refStats, srcRegion, 1)
}

// ColorCorrection removes a colour cast, given the colour (grayR, grayG,
// grayB) of an image area which should be neutral gray.  The channel means
// are scaled so that this colour becomes gray; the standard deviations are
// kept.
func ColorCorrection(src raster.Dataset, grayR, grayG, grayB float64) (*raster.Memory, error) {
	gray := [3]float64{grayR, grayG, grayB}
	for _, g := range gray {
		if !(g > 0) {
			return nil, fmt.Errorf("gray point %g: must be positive", g)
		}
	}
	avg := (grayR + grayG + grayB) / 3

	srcStats, err := ColorStats(src, rect.IntRect{})
	if err != nil {
		return nil, err
	}
	target := &ColorStatistics{Std: srcStats.Std}
	for c := range 3 {
		target.Mean[c] = srcStats.Mean[c] * avg / gray[c]
	}
	return MeanStdMatch(src, target, rect.IntRect{}, 1)
}
