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
	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBToHSL converts a colour with channels in [0, 255] to hue (degrees in
// [0, 360)), saturation and lightness (both in [0, 1]).
func RGBToHSL(r, g, b float64) (h, s, l float64) {
	c := colorful.Color{R: r / 255, G: g / 255, B: b / 255}
	return c.Hsl()
}

// HSLToRGB is the inverse of [RGBToHSL].
func HSLToRGB(h, s, l float64) (r, g, b float64) {
	c := colorful.Hsl(h, s, l)
	return c.R * 255, c.G * 255, c.B * 255
}

// RGBToHSV converts a colour with channels in [0, 255] to hue (degrees in
// [0, 360)), saturation and value (both in [0, 1]).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	c := colorful.Color{R: r / 255, G: g / 255, B: b / 255}
	return c.Hsv()
}

// HSVToRGB is the inverse of [RGBToHSV].
func HSVToRGB(h, s, v float64) (r, g, b float64) {
	c := colorful.Hsv(h, s, v)
	return c.R * 255, c.G * 255, c.B * 255
}
