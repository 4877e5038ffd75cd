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
	"strconv"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/internal/float"
	"seehuhn.de/go/raster/internal/parallel"
)

// AdjustParams describes a global colour adjustment.  The zero value leaves
// the image unchanged.
type AdjustParams struct {
	// Brightness is added to all channels, in units of the full range.
	// Typical values are in [-1, 1].
	Brightness float64

	// Contrast scales the channels around 128.  Positive values c multiply
	// by 1+2c, negative values by 1+c.  Typical values are in [-1, 1].
	Contrast float64

	// Saturation moves the HSL saturation towards 1 (positive values) or
	// towards 0 (negative values).  -1 gives a gray image.
	Saturation float64

	// Gamma is the gamma correction exponent.  The zero value is treated
	// as 1.  Values greater than 1 brighten the image.
	Gamma float64

	// Hue rotates the hue, in degrees.
	Hue float64
}

// Adjust applies brightness, contrast, gamma, saturation and hue changes, in
// this order.
//
// If ds has at least three bands, bands 1 to 3 are treated as red, green and
// blue, and any further bands are copied unchanged.  Otherwise every band is
// adjusted as a gray channel.
func Adjust(ds raster.Dataset, p AdjustParams) (*raster.Memory, error) {
	bands, err := raster.ReadAll8(ds)
	if err != nil {
		return nil, err
	}

	n := ds.Width() * ds.Height()
	if len(bands) >= 3 {
		r, g, b := bands[0], bands[1], bands[2]
		parallel.For(0, n, func(start, end int) {
			for i := start; i < end; i++ {
				rr, gg, bb := p.apply(float64(r[i]), float64(g[i]), float64(b[i]))
				r[i] = float.Byte(rr)
				g[i] = float.Byte(gg)
				b[i] = float.Byte(bb)
			}
		})
	} else {
		for _, data := range bands {
			parallel.For(0, n, func(start, end int) {
				for i := start; i < end; i++ {
					v := float64(data[i])
					v, _, _ = p.apply(v, v, v)
					data[i] = float.Byte(v)
				}
			})
		}
	}
	return raster.FromBytes(ds, bands), nil
}

func (p *AdjustParams) apply(r, g, b float64) (float64, float64, float64) {
	offset := p.Brightness * 255
	r += offset
	g += offset
	b += offset

	f := 1 + p.Contrast
	if p.Contrast >= 0 {
		f = 1 + 2*p.Contrast
	}
	r = (r-128)*f + 128
	g = (g-128)*f + 128
	b = (b-128)*f + 128

	if p.Gamma > 0 && p.Gamma != 1 {
		inv := 1 / p.Gamma
		r = math.Pow(float.Clamp(r, 0, 255)/255, inv) * 255
		g = math.Pow(float.Clamp(g, 0, 255)/255, inv) * 255
		b = math.Pow(float.Clamp(b, 0, 255)/255, inv) * 255
	}

	if p.Saturation != 0 || p.Hue != 0 {
		h, s, l := RGBToHSL(float.Clamp(r, 0, 255), float.Clamp(g, 0, 255), float.Clamp(b, 0, 255))
		if p.Saturation >= 0 {
			s += (1 - s) * p.Saturation
		} else {
			s *= 1 + p.Saturation
		}
		s = float.Clamp(s, 0, 1)
		h = math.Mod(h+p.Hue+360, 360)
		if h < 0 {
			h += 360
		}
		r, g, b = HSLToRGB(h, s, l)
	}
	return r, g, b
}

// Brightness shifts all channels by brightness·255.
func Brightness(ds raster.Dataset, brightness float64) (*raster.Memory, error) {
	return Adjust(ds, AdjustParams{Brightness: brightness})
}

// Contrast changes the contrast around the value 128.
func Contrast(ds raster.Dataset, contrast float64) (*raster.Memory, error) {
	return Adjust(ds, AdjustParams{Contrast: contrast})
}

// Saturation changes the colour saturation.
func Saturation(ds raster.Dataset, saturation float64) (*raster.Memory, error) {
	return Adjust(ds, AdjustParams{Saturation: saturation})
}

// Gamma applies gamma correction.
func Gamma(ds raster.Dataset, gamma float64) (*raster.Memory, error) {
	return Adjust(ds, AdjustParams{Gamma: gamma})
}

// Hue rotates the hue by the given number of degrees.
func Hue(ds raster.Dataset, degrees float64) (*raster.Memory, error) {
	return Adjust(ds, AdjustParams{Hue: degrees})
}

// Preset is a named colour adjustment.
type Preset int

// These are the available presets.
const (
	Vivid Preset = iota + 1
	Soft
	HighContrast
	Warm
	Cool
	BlackWhite
	Sepia
)

var presetNames = map[Preset]string{
	Vivid:        "vivid",
	Soft:         "soft",
	HighContrast: "highcontrast",
	Warm:         "warm",
	Cool:         "cool",
	BlackWhite:   "bw",
	Sepia:        "sepia",
}

func (p Preset) String() string {
	if name, ok := presetNames[p]; ok {
		return name
	}
	return "Preset(" + strconv.Itoa(int(p)) + ")"
}

// ParsePreset returns the preset with the given name, as returned by
// [Preset.String].
func ParsePreset(name string) (Preset, bool) {
	for p, n := range presetNames {
		if n == name {
			return p, true
		}
	}
	return 0, false
}

var presetParams = map[Preset]AdjustParams{
	Vivid:        {Brightness: 0.05, Contrast: 0.15, Saturation: 0.3, Gamma: 1.1},
	Soft:         {Brightness: 0.02, Contrast: -0.1, Saturation: -0.15, Gamma: 1.05},
	HighContrast: {Contrast: 0.4, Saturation: 0.1},
	Warm:         {Brightness: 0.03, Contrast: 0.05, Saturation: 0.1, Hue: 15},
	Cool:         {Contrast: 0.05, Saturation: 0.05, Hue: -15},
	BlackWhite:   {Contrast: 0.1, Saturation: -1},
}

// sepiaTint is applied after converting to black and white.
var sepiaTint = AdjustParams{Brightness: 0.05, Saturation: 0.3, Hue: 30}

// ApplyPreset applies a named colour adjustment.
func ApplyPreset(ds raster.Dataset, p Preset) (*raster.Memory, error) {
	if p == Sepia {
		gray, err := Adjust(ds, presetParams[BlackWhite])
		if err != nil {
			return nil, err
		}
		return Adjust(gray, sepiaTint)
	}
	params, ok := presetParams[p]
	if !ok {
		return nil, ErrInvalidParameter
	}
	return Adjust(ds, params)
}

// UnsharpMask gives the impression of a sharper image by slightly raising
// contrast and saturation.  No spatial filtering is performed.
func UnsharpMask(ds raster.Dataset, amount float64) (*raster.Memory, error) {
	return Adjust(ds, AdjustParams{
		Contrast:   amount * 0.3,
		Saturation: amount * 0.1,
	})
}
