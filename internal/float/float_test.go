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

package float

import (
	"math"
	"testing"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		in   float64
		prec int
		out  string
	}{
		{0, 3, "0"},
		{1, 3, "1"},
		{0.5, 3, "0.5"},
		{-0.0001, 2, "0"},
		{123.4567, 2, "123.46"},
		{100, 0, "100"},
		{2.50, 4, "2.5"},
		{math.NaN(), 2, "nan"},
		{math.Inf(-1), 2, "-inf"},
	}
	for _, c := range cases {
		if got := Format(c.in, c.prec); got != c.out {
			t.Errorf("Format(%g, %d) = %q, want %q", c.in, c.prec, got, c.out)
		}
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.23456, 2); got != 1.23 {
		t.Errorf("Round(1.23456, 2) = %g", got)
	}
	if got := Round(math.Inf(1), 2); !math.IsInf(got, 1) {
		t.Errorf("Round(+Inf, 2) = %g", got)
	}
}

func TestByte(t *testing.T) {
	cases := []struct {
		in  float64
		out uint8
	}{
		{-5, 0},
		{0, 0},
		{12.9, 12},
		{254.999, 254},
		{255, 255},
		{1000, 255},
		{math.NaN(), 0},
	}
	for _, c := range cases {
		if got := Byte(c.in); got != c.out {
			t.Errorf("Byte(%g) = %d, want %d", c.in, got, c.out)
		}
	}
}
