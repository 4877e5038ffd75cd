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

package raster

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

func TestMemoryReadWrite(t *testing.T) {
	m := NewMemory(4, 3, 2)
	for i := range m.Band(1) {
		m.Band(1)[i] = float64(i)
	}

	got, err := m.ReadBand(1, 1, 1, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]float64{5, 6, 9, 10}, got); d != "" {
		t.Errorf("window mismatch (-want +got):\n%s", d)
	}

	err = m.WriteBand(2, 2, 0, 2, 2, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0, 1, 2, 0, 0, 3, 4, 0, 0, 0, 0}
	if d := cmp.Diff(want, m.Band(2)); d != "" {
		t.Errorf("band 2 mismatch (-want +got):\n%s", d)
	}
}

func TestMemoryErrors(t *testing.T) {
	m := NewMemory(4, 3, 1)

	_, err := m.ReadBand(2, 0, 0, 1, 1)
	if !errors.Is(err, &BandRangeError{}) {
		t.Errorf("band 2: got %v, want BandRangeError", err)
	}
	_, err = m.ReadBand(0, 0, 0, 1, 1)
	if !errors.Is(err, &BandRangeError{}) {
		t.Errorf("band 0: got %v, want BandRangeError", err)
	}

	_, err = m.ReadBand(1, 3, 0, 2, 1)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("window outside image: got %v, want IOError", err)
	}

	err = m.WriteBand(1, 0, 0, 2, 2, []float64{1, 2, 3})
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("short buffer: got %v, want ErrSizeMismatch", err)
	}
}

func TestNoData(t *testing.T) {
	m := NewMemory(1, 1, 2)
	if _, ok := m.NoData(1); ok {
		t.Error("fresh band has no-data value")
	}
	if err := m.SetNoData(2, -9999); err != nil {
		t.Fatal(err)
	}
	v, ok := m.NoData(2)
	if !ok || v != -9999 {
		t.Errorf("NoData(2) = %g, %t", v, ok)
	}
	if _, ok := m.NoData(7); ok {
		t.Error("invalid band reports a no-data value")
	}
}

func TestCloneAndGeoTransform(t *testing.T) {
	m := NewMemory(2, 2, 1)
	m.GeoTransform = matrix.Matrix{10, 0, 0, -10, 500000, 4100000}
	m.Projection = "EPSG:32633"
	m.Band(1)[3] = 7

	c := m.Clone()
	c.Band(1)[3] = 8
	if m.Band(1)[3] != 7 {
		t.Error("clone shares storage")
	}
	if c.GeoTransform != m.GeoTransform || c.Projection != m.Projection {
		t.Error("geo-referencing not copied")
	}

	x, y := c.PixelToMap(1, 2)
	if x != 500010 || y != 4099980 {
		t.Errorf("PixelToMap(1, 2) = (%g, %g)", x, y)
	}
}

func TestReadBand8(t *testing.T) {
	m, err := NewMemoryFrom(3, 2, []float64{-3, 0.4, 0.5, 254.6, 300, math.NaN()})
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadBand8(m, 1, Region(m))
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]uint8{0, 0, 1, 255, 255, 0}, got); d != "" {
		t.Errorf("conversion mismatch (-want +got):\n%s", d)
	}
}

func TestClip(t *testing.T) {
	m := NewMemory(10, 8, 1)
	cases := []struct {
		in, want rect.IntRect
	}{
		{rect.IntRect{}, rect.IntRect{XMax: 10, YMax: 8}},
		{rect.IntRect{XMin: -2, YMin: 3, XMax: 4, YMax: 20}, rect.IntRect{XMin: 0, YMin: 3, XMax: 4, YMax: 8}},
		{rect.IntRect{XMin: 12, YMin: 0, XMax: 15, YMax: 2}, rect.IntRect{XMin: 12, YMin: 0, XMax: 12, YMax: 2}},
	}
	for _, c := range cases {
		if got := Clip(m, c.in); got != c.want {
			t.Errorf("Clip(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestStretch(t *testing.T) {
	got := Stretch([]float64{-1, 0, 1, math.NaN(), math.Inf(1)})
	want := []float64{0, 127.5, 255, 0, 0}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("Stretch mismatch (-want +got):\n%s", d)
	}
}

// shortDataset returns fewer samples than requested.
type shortDataset struct {
	*Memory
}

func (ds shortDataset) ReadBand(band, x, y, w, h int) ([]float64, error) {
	data, err := ds.Memory.ReadBand(band, x, y, w, h)
	if err != nil || len(data) == 0 {
		return data, err
	}
	return data[:len(data)-1], nil
}

func TestReadAll8FromBytes(t *testing.T) {
	m, err := NewMemoryFrom(2, 2,
		[]float64{-3, 0.4, 127.6, 300},
		[]float64{1, 2, 3, math.NaN()},
	)
	if err != nil {
		t.Fatal(err)
	}
	m.GeoTransform = matrix.Translate(10, 20)

	bands, err := ReadAll8(m)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]uint8{{0, 0, 128, 255}, {1, 2, 3, 0}}
	if d := cmp.Diff(want, bands); d != "" {
		t.Errorf("ReadAll8 (-want +got):\n%s", d)
	}

	out := FromBytes(m, bands[:1])
	if out.BandCount() != 1 || out.GeoTransform != m.GeoTransform {
		t.Errorf("FromBytes: %d bands, geotransform %v", out.BandCount(), out.GeoTransform)
	}
	if d := cmp.Diff([]float64{0, 0, 128, 255}, out.Band(1)); d != "" {
		t.Errorf("FromBytes (-want +got):\n%s", d)
	}

	_, err = ReadAll8(shortDataset{m})
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("short read: got %v, want ErrSizeMismatch", err)
	}
}
