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
	"math"
	"slices"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/internal/float"
	"seehuhn.de/go/raster/internal/parallel"
)

// LUT is a lookup table which maps every byte value to a new value.
type LUT [256]uint8

// Identity returns the lookup table which leaves all values unchanged.
func Identity() LUT {
	var l LUT
	for i := range l {
		l[i] = uint8(i)
	}
	return l
}

// Apply replaces every element of data by its image under l.
func (l *LUT) Apply(data []uint8) {
	for i, v := range data {
		data[i] = l[v]
	}
}

// ApplyLUT applies a lookup table to one band of ds, or to all bands if
// band is 0.  Other bands are copied unchanged.
func ApplyLUT(ds raster.Dataset, lut LUT, band int) (*raster.Memory, error) {
	if err := checkBandSelector(ds, band); err != nil {
		return nil, err
	}
	bands, err := raster.ReadAll8(ds)
	if err != nil {
		return nil, err
	}
	for i, data := range bands {
		if band != 0 && band != i+1 {
			continue
		}
		parallel.For(0, len(data), func(start, end int) {
			lut.Apply(data[start:end])
		})
	}
	return raster.FromBytes(ds, bands), nil
}

// GammaLUT returns the lookup table for gamma correction,
// 255·(i/255)^(1/gamma).  Values of gamma greater than 1 brighten the
// image.
func GammaLUT(gamma float64) (LUT, error) {
	if !(gamma > 0) || math.IsInf(gamma, 1) {
		return LUT{}, fmt.Errorf("gamma %g: %w", gamma, ErrInvalidParameter)
	}
	var l LUT
	inv := 1 / gamma
	for i := range l {
		l[i] = float.Byte(math.Pow(float64(i)/255, inv) * 255)
	}
	return l, nil
}

// LevelsParams describes a levels adjustment.
//
// Input values at or below InMin map to OutMin, values at or above InMax
// map to OutMax.  In between, the normalized input n in [0, 1] is mapped
// to OutMin + n^(1/Midtone)·(OutMax-OutMin).
type LevelsParams struct {
	InMin, InMax   float64
	OutMin, OutMax float64

	// Midtone is the gamma applied to the normalized input.  The zero
	// value is treated as 1.
	Midtone float64
}

// DefaultLevels returns the parameters of the identity levels adjustment.
func DefaultLevels() LevelsParams {
	return LevelsParams{InMax: 255, OutMax: 255, Midtone: 1}
}

// LevelsLUT returns the lookup table for a levels adjustment.
func LevelsLUT(p LevelsParams) (LUT, error) {
	midtone := p.Midtone
	if midtone == 0 {
		midtone = 1
	}
	if !(midtone > 0) || math.IsInf(midtone, 1) {
		return LUT{}, fmt.Errorf("midtone %g: %w", p.Midtone, ErrInvalidParameter)
	}

	inRange := p.InMax - p.InMin
	outRange := p.OutMax - p.OutMin
	var l LUT
	for i := range l {
		x := float64(i)
		var n float64
		switch {
		case x <= p.InMin:
			n = 0
		case x >= p.InMax:
			n = 1
		default:
			n = (x - p.InMin) / inRange
		}
		n = math.Pow(n, 1/midtone)
		l[i] = float.Byte(p.OutMin + n*outRange)
	}
	return l, nil
}

// AdjustLevels applies a levels adjustment to one band of ds, or to all
// bands if band is 0.
func AdjustLevels(ds raster.Dataset, p LevelsParams, band int) (*raster.Memory, error) {
	lut, err := LevelsLUT(p)
	if err != nil {
		return nil, err
	}
	return ApplyLUT(ds, lut, band)
}

// CurvePoint is a control point of a tone curve.
type CurvePoint struct {
	In, Out float64
}

// CurveParams describes a tone curve.
type CurveParams struct {
	// Points are the control points of the curve.  The order does not
	// matter.  With fewer than two points the curve is the identity.
	Points []CurvePoint

	// Channel selects the band the curve is applied to.  0 means all
	// bands.
	Channel int
}

// CurveLUT returns the lookup table for a tone curve.  The curve passes
// through all control points, using Catmull-Rom splines between them.
// Outside the range of the control points, the curve is constant.
func CurveLUT(points []CurvePoint) LUT {
	if len(points) < 2 {
		return Identity()
	}
	p := slices.Clone(points)
	slices.SortStableFunc(p, func(a, b CurvePoint) int {
		switch {
		case a.In < b.In:
			return -1
		case a.In > b.In:
			return 1
		}
		return 0
	})
	last := len(p) - 1

	var l LUT
	for i := range l {
		x := float64(i)
		if x <= p[0].In {
			l[i] = float.Byte(p[0].Out)
			continue
		}
		if x >= p[last].In {
			l[i] = float.Byte(p[last].Out)
			continue
		}

		idx := 0
		for j := range last {
			if x >= p[j].In && x <= p[j+1].In {
				idx = j
				break
			}
		}
		i0 := max(idx-1, 0)
		i1 := idx
		i2 := idx + 1
		i3 := min(idx+2, last)

		span := p[i2].In - p[i1].In
		if span <= 0 {
			l[i] = float.Byte(p[i2].Out)
			continue
		}
		t := (x - p[i1].In) / span
		y := catmullRom(p[i0].Out, p[i1].Out, p[i2].Out, p[i3].Out, t)
		l[i] = float.Byte(y)
	}
	return l
}

// catmullRom evaluates the Catmull-Rom segment between p1 (t=0) and p2
// (t=1).
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	a := -0.5*p0 + 1.5*p1 - 1.5*p2 + 0.5*p3
	b := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	c := -0.5*p0 + 0.5*p2
	d := p1
	return ((a*t+b)*t+c)*t + d
}

// AdjustCurves applies a tone curve to ds.
func AdjustCurves(ds raster.Dataset, p CurveParams) (*raster.Memory, error) {
	return ApplyLUT(ds, CurveLUT(p.Points), p.Channel)
}

// SCurve increases the contrast of the mid-tones by applying an S-shaped
// tone curve to all bands.  A strength of 0 leaves the image unchanged,
// 1 gives a strong effect.
func SCurve(ds raster.Dataset, strength float64) (*raster.Memory, error) {
	d := 32 * strength
	p := CurveParams{
		Points: []CurvePoint{
			{0, 0},
			{64, float.Clamp(64-d, 0, 255)},
			{128, 128},
			{192, float.Clamp(192+d, 0, 255)},
			{255, 255},
		},
	}
	return AdjustCurves(ds, p)
}
