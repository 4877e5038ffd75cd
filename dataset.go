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
	"fmt"
	"math"

	"seehuhn.de/go/geom/rect"
)

// Dataset is the read side of the raster storage service.
//
// Implementations need not be safe for concurrent use.  Unless documented
// otherwise, the functions in this module never call ReadBand on one
// dataset from several goroutines at once, except for a [*Memory].
type Dataset interface {
	// Width returns the number of pixel columns.
	Width() int

	// Height returns the number of pixel rows.
	Height() int

	// BandCount returns the number of bands.  Bands are numbered 1 to
	// BandCount.
	BandCount() int

	// ReadBand reads the w×h window with top-left corner (x, y) from the
	// given band.  The result is row-major and has length w*h.
	ReadBand(band, x, y, w, h int) ([]float64, error)

	// NoData returns the no-data value of a band, if one is set.
	NoData(band int) (float64, bool)
}

// WritableDataset is a Dataset which can be modified.
type WritableDataset interface {
	Dataset

	// WriteBand stores data, which must have length w*h, into the w×h
	// window with top-left corner (x, y) of the given band.
	WriteBand(band, x, y, w, h int, data []float64) error

	// SetNoData sets the no-data value of a band.
	SetNoData(band int, v float64) error
}

// Region returns the rectangle covering all of ds.
func Region(ds Dataset) rect.IntRect {
	return rect.IntRect{XMax: ds.Width(), YMax: ds.Height()}
}

// Clip returns the part of r which lies inside ds.  If r is the zero
// rectangle, the full image is returned.
func Clip(ds Dataset, r rect.IntRect) rect.IntRect {
	if r == (rect.IntRect{}) {
		return Region(ds)
	}
	r.XMin = max(r.XMin, 0)
	r.YMin = max(r.YMin, 0)
	r.XMax = min(r.XMax, ds.Width())
	r.YMax = min(r.YMax, ds.Height())
	if r.XMax < r.XMin {
		r.XMax = r.XMin
	}
	if r.YMax < r.YMin {
		r.YMax = r.YMin
	}
	return r
}

// ReadRegion reads the rectangle r of a band.
func ReadRegion(ds Dataset, band int, r rect.IntRect) ([]float64, error) {
	return ds.ReadBand(band, r.XMin, r.YMin, r.XMax-r.XMin, r.YMax-r.YMin)
}

// ReadBand8 reads the rectangle r of a band and converts the samples to
// bytes.  Values are rounded to the nearest integer and clamped to [0, 255];
// NaN becomes 0.
func ReadBand8(ds Dataset, band int, r rect.IntRect) ([]uint8, error) {
	data, err := ReadRegion(ds, band, r)
	if err != nil {
		return nil, err
	}
	res := make([]uint8, len(data))
	for i, v := range data {
		res[i] = ToByte(v)
	}
	return res, nil
}

// WriteBand8 writes byte samples to the full extent of a band.
func WriteBand8(ds WritableDataset, band int, data []uint8) error {
	buf := make([]float64, len(data))
	for i, v := range data {
		buf[i] = float64(v)
	}
	return ds.WriteBand(band, 0, 0, ds.Width(), ds.Height(), buf)
}

// ReadAll8 reads every band of ds as bytes, see [ReadBand8].
func ReadAll8(ds Dataset) ([][]uint8, error) {
	r := Region(ds)
	n := ds.Width() * ds.Height()
	res := make([][]uint8, ds.BandCount())
	for i := range res {
		data, err := ReadBand8(ds, i+1, r)
		if err != nil {
			return nil, err
		}
		if len(data) != n {
			return nil, &IOError{Op: "read", Band: i + 1, Err: ErrSizeMismatch}
		}
		res[i] = data
	}
	return res, nil
}

// FromBytes creates an in-memory dataset with the size and geo-referencing
// of src, holding the given byte samples.
func FromBytes(src Dataset, bands [][]uint8) *Memory {
	out := NewLike(src, len(bands))
	for i, data := range bands {
		dst := out.bands[i]
		for j, v := range data {
			dst[j] = float64(v)
		}
	}
	return out
}

// ToByte converts a sample value to a byte by rounding and clamping.
func ToByte(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}

// checkWindow verifies that the w×h window at (x, y) lies inside a
// width×height image.
func checkWindow(width, height, x, y, w, h int) error {
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > width || y+h > height {
		return fmt.Errorf("window %dx%d+%d+%d outside %dx%d image",
			w, h, x, y, width, height)
	}
	return nil
}
