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
	"errors"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/internal/float"
)

// GradientBlend joins two images side by side.  Image b is placed to the
// right of image a, such that the last overlap.XMax-overlap.XMin columns
// of a and the first columns of b cover the same area.
//
// Within the blend zone, which starts at column overlap.XMin of the output
// and is blendWidth columns wide, the output fades from a to b along a
// smoothstep curve.  A blendWidth which is non-positive or larger than the
// overlap width is replaced by the overlap width.  Only the horizontal
// extent of overlap is used.  Output pixels not covered by an image are 0.
func GradientBlend(a, b raster.Dataset, overlap rect.IntRect, blendWidth int) (*raster.Memory, error) {
	if a.BandCount() != b.BandCount() {
		return nil, ErrBandCountMismatch
	}
	ow := overlap.XMax - overlap.XMin
	w1, h1 := a.Width(), a.Height()
	w2, h2 := b.Width(), b.Height()
	if ow <= 0 || ow > w1 || ow > w2 {
		return nil, errors.New("invalid overlap width")
	}
	if blendWidth <= 0 || blendWidth > ow {
		blendWidth = ow
	}

	bufA, err := raster.ReadAll8(a)
	if err != nil {
		return nil, err
	}
	bufB, err := raster.ReadAll8(b)
	if err != nil {
		return nil, err
	}

	outW := w1 + w2 - ow
	outH := max(h1, h2)
	start := overlap.XMin
	end := start + blendWidth
	offset := w1 - ow

	out := raster.NewMemory(outW, outH, a.BandCount())
	if m, ok := a.(*raster.Memory); ok {
		out.GeoTransform = m.GeoTransform
		out.Projection = m.Projection
	}
	for k := range bufA {
		p1, p2 := bufA[k], bufB[k]
		sample1 := func(x, y int) float64 {
			if x < w1 && y < h1 {
				return float64(p1[y*w1+x])
			}
			return 0
		}
		sample2 := func(x, y int) float64 {
			x -= offset
			if x >= 0 && x < w2 && y < h2 {
				return float64(p2[y*w2+x])
			}
			return 0
		}

		dst := out.Band(k + 1)
		for y := range outH {
			for x := range outW {
				var v float64
				switch {
				case x < start:
					v = sample1(x, y)
				case x >= end:
					v = sample2(x, y)
				default:
					alpha := float64(x-start) / float64(blendWidth)
					alpha = alpha * alpha * (3 - 2*alpha)
					v = sample1(x, y)*(1-alpha) + sample2(x, y)*alpha
				}
				dst[y*outW+x] = float64(float.Byte(v))
			}
		}
	}
	return out, nil
}
